package worker_test

import (
	"context"
	"sync"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/queue"
)

type mockConsumer struct {
	batches  [][]queue.Message
	acked    []queue.Message
	requeued []queue.Message
	dlq      []queue.Message
	ackErr   error
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if len(m.batches) == 0 {
		return nil, nil
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return batch, nil
}

func (m *mockConsumer) Ack(ctx context.Context, msg queue.Message) error {
	m.acked = append(m.acked, msg)
	return m.ackErr
}

func (m *mockConsumer) Requeue(ctx context.Context, msg queue.Message, errMsg string) error {
	m.requeued = append(m.requeued, msg)
	return nil
}

func (m *mockConsumer) SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error {
	m.dlq = append(m.dlq, msg)
	return nil
}

type mockDispatcher struct {
	mu         sync.Mutex
	calls      []*model.WebhookDelivery
	dispatchFn func(ctx context.Context, d *model.WebhookDelivery) error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, d *model.WebhookDelivery) error {
	m.mu.Lock()
	m.calls = append(m.calls, d)
	m.mu.Unlock()
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, d)
	}
	return nil
}

func (m *mockDispatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
