package worker

import (
	"context"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Dispatcher runs the handler for a stored delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, delivery *model.WebhookDelivery) error
}
