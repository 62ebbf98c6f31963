package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/authstarter/domain"
)

// AuthMiddleware authenticates requests with a bearer access token and
// rejects tokens whose backing session is gone or invalidated, so a forced
// logout takes effect before the access token expires.
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			switch err {
			case domain.ErrTokenExpired:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		if claims.SessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token carries no session"})
			c.Abort()
			return
		}

		session, err := sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil || !session.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
			c.Abort()
			return
		}
		if session.UserID != claims.UserID {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user mismatch"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_id_str", fmt.Sprintf("%d", claims.UserID))
		c.Set("user_role", claims.Role)
		c.Set("session_id", claims.SessionID)

		c.Next()
	})
}
