package memory

import (
	"context"
	"slices"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

type deliveryRow struct {
	model.WebhookDelivery
}

type webhookDeliveryStore struct {
	b *Backend
}

func (s *webhookDeliveryStore) CreateOrGet(ctx context.Context, d *model.WebhookDelivery) (*model.WebhookDelivery, bool, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	if existing := s.b.findDelivery(d.DeliveryID); existing != nil {
		return cloneDelivery(&existing.WebhookDelivery), false, nil
	}
	if _, taken := s.b.deliveries[d.ID]; taken {
		return nil, false, store.ErrConflict
	}

	next := cloneDelivery(d)
	next.Attempts = 0
	next.ProcessedAt = nil
	next.ProcessingError = nil
	next.EnqueuedAt = nil
	next.CreatedAt = s.b.timestamp()
	s.b.deliveries[next.ID] = &deliveryRow{WebhookDelivery: *next}
	return cloneDelivery(next), true, nil
}

func (s *webhookDeliveryStore) GetByID(ctx context.Context, id int64) (*model.WebhookDelivery, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row, ok := s.b.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDelivery(&row.WebhookDelivery), nil
}

func (s *webhookDeliveryStore) GetByDeliveryID(ctx context.Context, deliveryID string) (*model.WebhookDelivery, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row := s.b.findDelivery(deliveryID)
	if row == nil {
		return nil, store.ErrNotFound
	}
	return cloneDelivery(&row.WebhookDelivery), nil
}

func (s *webhookDeliveryStore) IncrementAttempts(ctx context.Context, id int64) (*model.WebhookDelivery, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row.Attempts++
	return cloneDelivery(&row.WebhookDelivery), nil
}

func (s *webhookDeliveryStore) MarkEnqueued(ctx context.Context, id int64) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.deliveries[id]
	if !ok {
		return store.ErrNotFound
	}
	row.EnqueuedAt = timePtr(s.b.timestamp())
	return nil
}

func (s *webhookDeliveryStore) MarkProcessed(ctx context.Context, id int64) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.deliveries[id]
	if !ok {
		return nil
	}
	row.ProcessedAt = timePtr(s.b.timestamp())
	row.ProcessingError = nil
	return nil
}

func (s *webhookDeliveryStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.deliveries[id]
	if !ok {
		return nil
	}
	row.ProcessingError = &errMsg
	return nil
}

func (b *Backend) findDelivery(deliveryID string) *deliveryRow {
	for _, row := range b.deliveries {
		if row.DeliveryID == deliveryID {
			return row
		}
	}
	return nil
}

func cloneDelivery(d *model.WebhookDelivery) *model.WebhookDelivery {
	c := *d
	c.Payload = slices.Clone(d.Payload)
	c.ProcessedAt = copyTime(d.ProcessedAt)
	c.EnqueuedAt = copyTime(d.EnqueuedAt)
	return &c
}
