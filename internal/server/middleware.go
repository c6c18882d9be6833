package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filedrop/filedrop/internal/logging"
)

// RequestLogger logs one line per request. Bodies are not logged; they are
// file contents.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		switch {
		case status >= 500:
			ev = logger.Error()
		case status >= 400:
			ev = logger.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("bytes", c.Writer.Size()).
			Msg("request")
	}
}
