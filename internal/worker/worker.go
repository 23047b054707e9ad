package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"polar.sh/ghsync/common/logger"
	"polar.sh/ghsync/internal/queue"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/store"
	"polar.sh/ghsync/internal/webhook"
)

type Config struct {
	MaxAttempts int
}

type Worker struct {
	consumer   Consumer
	deliveries store.WebhookDeliveryStore
	dispatcher Dispatcher
	cfg        Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, deliveries store.WebhookDeliveryStore, dispatcher Dispatcher, cfg Config) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Worker{
		consumer:   consumer,
		deliveries: deliveries,
		dispatcher: dispatcher,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "ghsync.worker",
	})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		_ = w.HandleMessage(ctx, msg)
	}

	return nil
}

// HandleMessage processes msg and settles it on the stream: ack on success,
// requeue or DLQ on failure. The processing error is returned for logging.
// Exported so it can be reused by the reclaimer.
func (w *Worker) HandleMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DeliveryID:     &msg.DeliveryID,
		Event:          &msg.Event,
		Action:         &msg.Action,
		InstallationID: msg.InstallationID,
		MessageID:      &msg.ID,
	})

	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_delivery")
	defer sc.End()
	ctx = sc.Context()
	sc.SetAttributes(
		attribute.String("github.delivery_id", msg.DeliveryID),
		attribute.String("github.event", msg.Event),
		attribute.Int("queue.attempt", msg.Attempt),
	)

	err := w.processMessageSafe(ctx, msg)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
	}
	return err
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage dispatches the delivery behind msg and acks it on success.
// Failures are returned without touching the stream.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	slog.InfoContext(ctx, "processing message",
		"delivery_row_id", msg.DeliveryRowID,
		"attempt", msg.Attempt)

	delivery, err := w.deliveries.GetByID(ctx, msg.DeliveryRowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return service.NewPermanentError("load delivery", fmt.Errorf("delivery row %d: %w", msg.DeliveryRowID, err))
		}
		return fmt.Errorf("loading delivery: %w", err)
	}

	if delivery.IsProcessed() {
		// Redelivered after a successful run whose ack was lost.
		slog.InfoContext(ctx, "delivery already processed, skipping")
		w.ack(ctx, msg)
		return nil
	}

	if _, err := w.deliveries.IncrementAttempts(ctx, delivery.ID); err != nil {
		return fmt.Errorf("incrementing delivery attempts: %w", err)
	}

	start := time.Now()
	if err := w.dispatcher.Dispatch(ctx, delivery); err != nil {
		return err
	}

	if err := w.deliveries.MarkProcessed(ctx, delivery.ID); err != nil {
		return fmt.Errorf("marking delivery processed: %w", err)
	}

	w.ack(ctx, msg)

	slog.InfoContext(ctx, "delivery processed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will pick it up again; processing is idempotent.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err)
	}
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if markErr := w.deliveries.MarkFailed(ctx, msg.DeliveryRowID, err.Error()); markErr != nil && !errors.Is(markErr, store.ErrNotFound) {
		slog.WarnContext(ctx, "failed to record delivery error", "error", markErr)
	}

	if errors.Is(err, webhook.ErrUnsupportedEvent) {
		slog.InfoContext(ctx, "unsupported event, dropping message")
		w.ack(ctx, msg)
		return
	}

	if !service.IsRetryable(err) || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "sending message to DLQ",
			"attempts", msg.Attempt,
			"retryable", service.IsRetryable(err))
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
