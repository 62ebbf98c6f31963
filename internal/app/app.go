package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/authstarter/internal/config"
	httpx "github.com/you/authstarter/internal/http"
	"github.com/you/authstarter/internal/http/handlers"
	"github.com/you/authstarter/internal/http/middleware"
	"github.com/you/authstarter/internal/jobs"
	"github.com/you/authstarter/internal/logging"
)

// Run wires the application together and serves HTTP until SIGINT or
// SIGTERM, then shuts down gracefully.
func Run(cfg *config.Config) error {
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}

	if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
		return err
	}

	if err := seedDefaultPolicies(c); err != nil {
		return err
	}

	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	router := httpx.BuildRouter(httpx.RouterDeps{
		Auth:           handlers.NewAuthHandlers(c.AuthSvc),
		Sessions:       handlers.NewSessionHandlers(c.AuthSvc),
		Admin:          handlers.NewAdminHandlers(c.UserRepo, c.PolicySvc),
		Health:         handlers.NewHealthHandlers(c.DB, c.RedisClient),
		JWT:            middleware.NewAuthMW(c.TokenSvc, c.SessionRepo),
		Casbin:         middleware.NewCasbinMW(c.Casbin.Enforcer),
		Rate:           middleware.NewRateLimitMW(c.RedisClient, logger),
		Logger:         logger,
		AuthRateMax:    cfg.RateLimitAuthMax,
		AuthRateWindow: cfg.RateLimitWindow,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanup := jobs.NewCleanup(
		c.SessionRepo,
		c.VerificationTokens,
		c.ResetTokens,
		c.AttemptRepo,
		logger,
		jobs.CleanupConfig{
			Interval:         cfg.CleanupInterval,
			SessionRetention: cfg.SessionRetention,
			AttemptIdle:      cfg.LoginAttemptWindow,
		},
	)
	go cleanup.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}

	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = c.RedisClient.Close()

	return nil
}

// seedDefaultPolicies installs the baseline role policies on first boot.
func seedDefaultPolicies(c *Container) error {
	policies, err := c.Casbin.Enforcer.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}

	defaults := [][]string{
		{"role_admin", "/admin/*", "(GET|POST|PUT|DELETE)"},
		{"role_admin", "/auth/*", "(GET|POST)"},
		{"role_user", "/auth/me", "GET"},
		{"role_user", "/auth/sessions", "GET"},
		{"role_user", "/auth/logout-all", "POST"},
	}
	for _, p := range defaults {
		if _, err := c.Casbin.Enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	if err := c.Casbin.Enforcer.SavePolicy(); err != nil {
		return err
	}

	c.Logger.Info().Int("count", len(defaults)).Msg("casbin: seeded default policies")
	return nil
}
