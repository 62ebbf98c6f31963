package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandlers exposes liveness and readiness probes.
type HealthHandlers struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewHealthHandlers creates new health handlers.
func NewHealthHandlers(db *gorm.DB, redisClient *redis.Client) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redisClient}
}

// Health is the liveness probe; it answers as long as the process runs.
func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready is the readiness probe; it checks the database and Redis.
func (h *HealthHandlers) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		healthy = false
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unavailable"
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": checks})
}
