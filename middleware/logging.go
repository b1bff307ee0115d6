package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/logger"
)

// RequestLogger logs one line per request after the handler chain has run
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.L().Errorw("request", fields...)
		case status >= 400:
			logger.L().Warnw("request", fields...)
		default:
			logger.L().Infow("request", fields...)
		}
	}
}
