package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"polar.sh/ghsync/common/logger"
)

// Logger logs one line per request. GitHub delivery headers, when present,
// are attached to the request context so handler logs carry them too.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		fields := logger.LogFields{Component: "ghsync.http"}
		if id := c.GetHeader("X-GitHub-Delivery"); id != "" {
			fields.DeliveryID = &id
		}
		if event := c.GetHeader("X-GitHub-Event"); event != "" {
			fields.Event = &event
		}
		c.Request = c.Request.WithContext(logger.WithLogFields(c.Request.Context(), fields))

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
