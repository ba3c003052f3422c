package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	clock     clock.Clock
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client, clk clock.Clock) *HealthHandler {
	if clk == nil {
		clk = clock.New()
	}
	return &HealthHandler{
		db:        db,
		redis:     redis,
		clock:     clk,
		startedAt: clk.Now(),
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	now := h.clock.Now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": now.UTC().Format(time.RFC3339),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "database error"})
		return
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "database error"})
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "database not reachable"})
		return
	}

	// Redis is optional
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "redis not reachable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
