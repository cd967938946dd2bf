package middleware

import (
	"strconv"
	"time"

	"storefront-backend/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records a counter and latency histogram per request,
// labeled by the route template rather than the raw path so ids do not blow
// up cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
