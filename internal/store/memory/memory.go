// Package memory is an in-process store backend used for development
// (STORE_BACKEND=memory) and tests. It mirrors the constraints the postgres
// schema enforces: unique external ids per platform, unique live repository
// names per organization and unique delivery ids.
package memory

import (
	"sync"
	"time"

	"polar.sh/ghsync/internal/store"
)

// Backend holds all tables behind a single lock.
type Backend struct {
	mu sync.RWMutex

	orgs       map[int64]*orgRow
	repos      map[int64]*repoRow
	issues     map[int64]*issueRow
	deliveries map[int64]*deliveryRow

	now func() time.Time
}

func New() *Backend {
	return &Backend{
		orgs:       make(map[int64]*orgRow),
		repos:      make(map[int64]*repoRow),
		issues:     make(map[int64]*issueRow),
		deliveries: make(map[int64]*deliveryRow),
		now:        time.Now,
	}
}

// WithClock overrides the timestamp source; tests use it for deterministic times.
func (b *Backend) WithClock(now func() time.Time) *Backend {
	b.now = now
	return b
}

func (b *Backend) ExternalOrganizations() store.ExternalOrganizationStore {
	return &externalOrganizationStore{b: b}
}

func (b *Backend) Repositories() store.RepositoryStore {
	return &repositoryStore{b: b}
}

func (b *Backend) Issues() store.IssueStore {
	return &issueStore{b: b}
}

func (b *Backend) WebhookDeliveries() store.WebhookDeliveryStore {
	return &webhookDeliveryStore{b: b}
}

func (b *Backend) timestamp() time.Time {
	return b.now().UTC()
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
