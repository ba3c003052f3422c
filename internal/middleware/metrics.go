package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"campus-chat-service/internal/metrics"
)

// Metrics records request count and latency per route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestStarted()
		start := time.Now()

		c.Next()

		m.RequestFinished()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
