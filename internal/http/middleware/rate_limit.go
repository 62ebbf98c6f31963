package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimitMW throttles requests per client IP using fixed windows in
// Redis. Each route group gets its own key scope so the stricter auth
// limits do not interfere with general traffic.
type RateLimitMW struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRateLimitMW(client *redis.Client, logger zerolog.Logger) *RateLimitMW {
	return &RateLimitMW{client: client, logger: logger}
}

// Limit returns a middleware that allows at most max requests per client IP
// within each fixed window. When Redis is unreachable the request is
// allowed through; availability wins over throttling here.
func (mw *RateLimitMW) Limit(scope string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 || window <= 0 {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.ClientIP(), bucket)

		count, err := mw.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			mw.logger.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			mw.client.Expire(c.Request.Context(), key, window)
		}

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many requests, slow down",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
