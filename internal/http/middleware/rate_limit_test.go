package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(t *testing.T, max int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mw := NewRateLimitMW(client, zerolog.Nop())

	r := gin.New()
	r.POST("/auth/login", mw.Limit("auth", max, window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, mr
}

func doLogin(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		w := doLogin(r, "203.0.113.7")
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := doLogin(r, "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
	require.Equal(t, http.StatusTooManyRequests, doLogin(r, "203.0.113.7").Code)

	// A different client still has its own budget.
	assert.Equal(t, http.StatusOK, doLogin(r, "198.51.100.9").Code)
}

func TestRateLimit_WindowExpiry(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
	require.Equal(t, http.StatusTooManyRequests, doLogin(r, "203.0.113.7").Code)

	// Window keys expire in Redis; once the clock passes the window the
	// counter is gone.
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
}

func TestRateLimit_DisabledWhenMaxZero(t *testing.T) {
	r, _ := newRateLimitedRouter(t, 0, time.Minute)

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
	}
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	r, mr := newRateLimitedRouter(t, 1, time.Minute)
	mr.Close()

	assert.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, doLogin(r, "203.0.113.7").Code)
}
