package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"polar.sh/ghsync/common/id"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/queue"
)

type DeliveryIngestParams struct {
	DeliveryID     string
	Event          string
	Action         string
	InstallationID *int64
	Payload        json.RawMessage
	TraceID        *string
}

type DeliveryIngestResult struct {
	Delivery   *model.WebhookDelivery
	Enqueued   bool
	Duplicated bool
}

type DeliveryIngestService interface {
	Ingest(ctx context.Context, params DeliveryIngestParams) (*DeliveryIngestResult, error)
}

type deliveryIngestService struct {
	txRunner TxRunner
	queue    queue.Producer
	logger   *slog.Logger
}

func NewDeliveryIngestService(txRunner TxRunner, queue queue.Producer, logger *slog.Logger) DeliveryIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &deliveryIngestService{
		txRunner: txRunner,
		queue:    queue,
		logger:   logger,
	}
}

// Ingest records the delivery and enqueues it. GitHub redelivers with the same
// X-GitHub-Delivery id; a repeat is acknowledged without a new task unless the
// first enqueue never succeeded.
func (s *deliveryIngestService) Ingest(ctx context.Context, params DeliveryIngestParams) (*DeliveryIngestResult, error) {
	if params.DeliveryID == "" || params.Event == "" {
		return nil, fmt.Errorf("%w: delivery id and event are required", ErrInvalidDelivery)
	}
	if len(params.Payload) == 0 || !json.Valid(params.Payload) {
		return nil, fmt.Errorf("%w: payload must be a JSON document", ErrInvalidDelivery)
	}

	var (
		delivery *model.WebhookDelivery
		created  bool
	)
	if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		delivery, created, err = sp.WebhookDeliveries().CreateOrGet(ctx, &model.WebhookDelivery{
			ID:             id.New(),
			DeliveryID:     params.DeliveryID,
			Event:          params.Event,
			Action:         params.Action,
			InstallationID: params.InstallationID,
			Payload:        params.Payload,
		})
		if err != nil {
			return fmt.Errorf("recording webhook delivery: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	switch {
	case created:
	case delivery.IsEnqueued() || delivery.IsProcessed() || delivery.Attempts > 0:
		s.logger.InfoContext(ctx, "duplicate delivery deduped",
			"delivery_id", params.DeliveryID,
			"delivery_row_id", delivery.ID)
		return &DeliveryIngestResult{Delivery: delivery, Duplicated: true}, nil
	default:
		// Recorded, but the enqueue that should have followed failed.
		s.logger.InfoContext(ctx, "re-enqueueing delivery that never reached the queue",
			"delivery_id", params.DeliveryID,
			"delivery_row_id", delivery.ID)
	}

	if err := s.queue.Enqueue(ctx, queue.WebhookMessage{
		DeliveryRowID:  delivery.ID,
		DeliveryID:     delivery.DeliveryID,
		Event:          delivery.Event,
		Action:         delivery.Action,
		InstallationID: delivery.InstallationID,
		TraceID:        params.TraceID,
		Attempt:        1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing delivery: %w", err)
	}

	// Best effort: the task is already on the stream.
	if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		return sp.WebhookDeliveries().MarkEnqueued(ctx, delivery.ID)
	}); err != nil {
		s.logger.WarnContext(ctx, "marking delivery enqueued failed",
			"delivery_id", delivery.DeliveryID,
			"error", err)
	}

	return &DeliveryIngestResult{Delivery: delivery, Enqueued: true}, nil
}
