package store

import (
	"context"
	"encoding/json"

	"polar.sh/ghsync/core/db/sqlc"
	"polar.sh/ghsync/internal/model"
)

type webhookDeliveryStore struct {
	queries *sqlc.Queries
}

func newWebhookDeliveryStore(queries *sqlc.Queries) WebhookDeliveryStore {
	return &webhookDeliveryStore{queries: queries}
}

func (s *webhookDeliveryStore) CreateOrGet(ctx context.Context, d *model.WebhookDelivery) (*model.WebhookDelivery, bool, error) {
	row, err := s.queries.UpsertWebhookDelivery(ctx, sqlc.UpsertWebhookDeliveryParams{
		ID:             d.ID,
		DeliveryID:     d.DeliveryID,
		Event:          d.Event,
		Action:         d.Action,
		InstallationID: d.InstallationID,
		Payload:        []byte(d.Payload),
	})
	if err != nil {
		return nil, false, mapErr(err)
	}
	created := row.ID == d.ID
	return toWebhookDeliveryModel(row), created, nil
}

func (s *webhookDeliveryStore) GetByID(ctx context.Context, id int64) (*model.WebhookDelivery, error) {
	row, err := s.queries.GetWebhookDelivery(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWebhookDeliveryModel(row), nil
}

func (s *webhookDeliveryStore) GetByDeliveryID(ctx context.Context, deliveryID string) (*model.WebhookDelivery, error) {
	row, err := s.queries.GetWebhookDeliveryByDeliveryID(ctx, deliveryID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWebhookDeliveryModel(row), nil
}

func (s *webhookDeliveryStore) IncrementAttempts(ctx context.Context, id int64) (*model.WebhookDelivery, error) {
	row, err := s.queries.IncrementWebhookDeliveryAttempts(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toWebhookDeliveryModel(row), nil
}

func (s *webhookDeliveryStore) MarkEnqueued(ctx context.Context, id int64) error {
	return s.queries.MarkWebhookDeliveryEnqueued(ctx, id)
}

func (s *webhookDeliveryStore) MarkProcessed(ctx context.Context, id int64) error {
	return s.queries.MarkWebhookDeliveryProcessed(ctx, id)
}

func (s *webhookDeliveryStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return s.queries.MarkWebhookDeliveryFailed(ctx, sqlc.MarkWebhookDeliveryFailedParams{
		ID:              id,
		ProcessingError: &errMsg,
	})
}

func toWebhookDeliveryModel(row sqlc.WebhookDelivery) *model.WebhookDelivery {
	return &model.WebhookDelivery{
		ID:              row.ID,
		DeliveryID:      row.DeliveryID,
		Event:           row.Event,
		Action:          row.Action,
		InstallationID:  row.InstallationID,
		Payload:         json.RawMessage(row.Payload),
		Attempts:        int(row.Attempts),
		ProcessedAt:     fromTimestamptz(row.ProcessedAt),
		ProcessingError: row.ProcessingError,
		EnqueuedAt:      fromTimestamptz(row.EnqueuedAt),
		CreatedAt:       row.CreatedAt.Time,
	}
}
