package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vmunrayos/multi-workspace/internal/logger"
)

// AccessLog writes one structured line per completed request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("request completed", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  RequestIDFrom(c),
		})
	}
}
