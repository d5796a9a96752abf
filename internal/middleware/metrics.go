package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workspace-platform/workspace-sso/internal/telemetry"
)

// Metrics records http_requests_total and http_request_duration_seconds for
// every request. The path label uses c.FullPath() — the matched route template,
// not the raw URL — so per-user URLs do not inflate label cardinality; requests
// that match no route use "<no-route>". Register after gin.Recovery() and
// RequestID so the status set by error handlers is captured.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
