package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"campus-chat-service/internal/metrics"
)

// RateLimiter is a fixed-window counter per client IP kept in redis.
type RateLimiter struct {
	name    string
	limit   int
	window  time.Duration
	message string

	rdb     *redis.Client
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger

	disabledOnce sync.Once
}

type RateLimiterConfig struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

func NewRateLimiter(cfg RateLimiterConfig, rdb *redis.Client, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) *RateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests, please try again later."
	}
	return &RateLimiter{
		name:    cfg.Name,
		limit:   cfg.Limit,
		window:  cfg.Window,
		message: cfg.Message,
		rdb:     rdb,
		clock:   clk,
		metrics: m,
		logger:  logger,
	}
}

// windowFor returns the counter key suffix and the time the window resets.
func (l *RateLimiter) windowFor(now time.Time) (int64, time.Time) {
	start := now.Truncate(l.window)
	return start.Unix(), start.Add(l.window)
}

func (l *RateLimiter) key(ip string, windowStart int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.name, ip, windowStart)
}

func (l *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rdb == nil || l.limit <= 0 {
			l.disabledOnce.Do(func() {
				l.logger.Warn("Rate limiter disabled", zap.String("limiter", l.name))
			})
			c.Next()
			return
		}

		now := l.clock.Now()
		windowStart, resetAt := l.windowFor(now)
		count, err := l.hit(c.Request.Context(), l.key(c.ClientIP(), windowStart))
		if err != nil {
			l.logger.Warn("Rate limit check failed", zap.String("limiter", l.name), zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(l.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		h := c.Writer.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(l.limit))
		h.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		h.Set("RateLimit-Reset", strconv.FormatInt(int64(resetAt.Sub(now).Seconds()+0.5), 10))

		if count > int64(l.limit) {
			l.metrics.RecordRateLimited(l.name)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": l.message})
			return
		}
		c.Next()
	}
}
