package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// WebhookMessage points the worker at a stored webhook delivery.
type WebhookMessage struct {
	DeliveryRowID  int64
	DeliveryID     string
	Event          string
	Action         string
	InstallationID *int64
	TraceID        *string
	Attempt        int
}

type Producer interface {
	Enqueue(ctx context.Context, msg WebhookMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg WebhookMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":       string(TaskTypeGitHubWebhook),
		"delivery_row_id": msg.DeliveryRowID,
		"delivery_id":     msg.DeliveryID,
		"event":           msg.Event,
		"action":          msg.Action,
		"attempt":         attempt,
	}
	if msg.InstallationID != nil {
		fields["installation_id"] = *msg.InstallationID
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued webhook delivery",
		"delivery_id", msg.DeliveryID,
		"event", msg.Event,
		"action", msg.Action,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
