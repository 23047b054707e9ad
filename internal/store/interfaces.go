package store

import (
	"context"
	"errors"
	"time"

	"polar.sh/ghsync/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint
var ErrConflict = errors.New("conflict")

// ExternalOrganizationStore defines the contract for external organization data access.
// GetByExternalID returns soft-deleted rows; GetByID only does when allowDeleted is set.
type ExternalOrganizationStore interface {
	GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.ExternalOrganization, error)
	GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.ExternalOrganization, error)
	GetByInstallationID(ctx context.Context, installationID int64) (*model.ExternalOrganization, error)
	Upsert(ctx context.Context, org *model.ExternalOrganization) (*model.ExternalOrganization, error)
	SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error)
}

// RepositoryStore defines the contract for repository data access.
// Upsert revives a soft-deleted row with the same external id.
type RepositoryStore interface {
	GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Repository, error)
	GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Repository, error)
	GetLiveByName(ctx context.Context, organizationID int64, name string) (*model.Repository, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]model.Repository, error)
	Upsert(ctx context.Context, repo *model.Repository) (*model.Repository, error)
	SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error)
}

// IssueStore defines the contract for issue data access.
// Upsert leaves deleted_at untouched.
type IssueStore interface {
	GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Issue, error)
	GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Issue, error)
	Upsert(ctx context.Context, issue *model.Issue) (*model.Issue, error)
	UpdateFunding(ctx context.Context, id int64, fundingGoal *int64, badgeCustomContent *string) (*model.Issue, error)
	UpdateBadgeState(ctx context.Context, id int64, embeddedAt *time.Time, currentlyEmbedded bool) (*model.Issue, error)
	SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error)
}

// WebhookDeliveryStore defines the contract for the inbound delivery log
type WebhookDeliveryStore interface {
	// CreateOrGet returns the existing row for the delivery id, or inserts it.
	// The bool reports whether a new row was created.
	CreateOrGet(ctx context.Context, delivery *model.WebhookDelivery) (*model.WebhookDelivery, bool, error)
	GetByID(ctx context.Context, id int64) (*model.WebhookDelivery, error)
	GetByDeliveryID(ctx context.Context, deliveryID string) (*model.WebhookDelivery, error)
	IncrementAttempts(ctx context.Context, id int64) (*model.WebhookDelivery, error)
	MarkEnqueued(ctx context.Context, id int64) error
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}
