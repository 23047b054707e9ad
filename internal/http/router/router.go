package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"polar.sh/ghsync/internal/http/handler"
	"polar.sh/ghsync/internal/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type RouterConfig struct {
	WebhookSecret   string
	TraceHeaderName string
	// Health dependencies, keyed by name. Nil entries are skipped.
	Health map[string]Pinger
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		for name, p := range cfg.Health {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "dependency": name})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	webhookHandler := handler.NewGitHubWebhookHandler(services.DeliveryIngest(), cfg.WebhookSecret, cfg.TraceHeaderName)
	WebhookRouter(router.Group("/webhooks"), webhookHandler)
}
