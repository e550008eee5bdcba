package middleware

import (
	"strconv"
	"time"

	"vehicle_parking/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latencies per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.ResponseTime.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
