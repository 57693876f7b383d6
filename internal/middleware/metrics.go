package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
)

// Metrics records request counts and latency per route template, so
// /api/ads/:id/click stays one series whatever the id.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.RequestsProcessed.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
