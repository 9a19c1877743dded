package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that matched no registered route
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count and latency per route template
func HTTPMetrics(metrics *telemetry.ServiceMetrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
