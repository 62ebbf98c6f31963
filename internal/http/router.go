package httpx

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/you/authstarter/internal/http/handlers"
	"github.com/you/authstarter/internal/http/middleware"
)

// RouterDeps carries everything BuildRouter wires together.
type RouterDeps struct {
	Auth     *handlers.AuthHandlers
	Sessions *handlers.SessionHandlers
	Admin    *handlers.AdminHandlers
	Health   *handlers.HealthHandlers
	JWT      *middleware.AuthMW
	Casbin   *middleware.CasbinMW
	Rate     *middleware.RateLimitMW
	Logger   zerolog.Logger

	// AuthRateMax caps requests per IP on the unauthenticated auth
	// endpoints within each AuthRateWindow.
	AuthRateMax    int
	AuthRateWindow time.Duration
}

func BuildRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	r.GET("/health", d.Health.Health)
	r.GET("/ready", d.Health.Ready)

	auth := r.Group("/auth").Use(d.Rate.Limit("auth", d.AuthRateMax, d.AuthRateWindow))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/verify-email", d.Auth.VerifyEmail)
	auth.POST("/request-password-reset", d.Auth.RequestPasswordReset)
	auth.POST("/reset-password", d.Auth.ResetPassword)

	v := r.Group("/").Use(d.JWT.WithJWT(), d.Casbin.Enforce())
	v.GET("/auth/me", d.Sessions.Me)
	v.GET("/auth/sessions", d.Sessions.ListSessions)
	v.POST("/auth/logout-all", d.Sessions.LogoutAll)

	adm := r.Group("/admin").Use(d.JWT.WithJWT(), d.Casbin.Enforce())
	adm.POST("/users/:id/role", d.Admin.SetUserRole)
	adm.GET("/policies", d.Admin.ListPolicies)
	adm.POST("/policies", d.Admin.AddPolicy)
	adm.DELETE("/policies", d.Admin.RemovePolicy)

	return r
}
