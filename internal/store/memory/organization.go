package memory

import (
	"context"
	"maps"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

type orgRow struct {
	model.ExternalOrganization
}

type externalOrganizationStore struct {
	b *Backend
}

func (s *externalOrganizationStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.ExternalOrganization, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row, ok := s.b.orgs[id]
	if !ok || (row.DeletedAt != nil && !allowDeleted) {
		return nil, store.ErrNotFound
	}
	return cloneOrg(&row.ExternalOrganization), nil
}

func (s *externalOrganizationStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.ExternalOrganization, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row := s.b.findOrg(platform, externalID)
	if row == nil {
		return nil, store.ErrNotFound
	}
	return cloneOrg(&row.ExternalOrganization), nil
}

func (s *externalOrganizationStore) GetByInstallationID(ctx context.Context, installationID int64) (*model.ExternalOrganization, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	for _, row := range s.b.orgs {
		if row.DeletedAt == nil && row.InstallationID != nil && *row.InstallationID == installationID {
			return cloneOrg(&row.ExternalOrganization), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *externalOrganizationStore) Upsert(ctx context.Context, org *model.ExternalOrganization) (*model.ExternalOrganization, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	now := s.b.timestamp()
	next := cloneOrg(org)
	if next.InstallationPermissions == nil {
		next.InstallationPermissions = map[string]string{}
	}

	if existing := s.b.findOrg(org.Platform, org.ExternalID); existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		if existing.InstallationCreatedAt != nil {
			next.InstallationCreatedAt = copyTime(existing.InstallationCreatedAt)
		}
		next.ModifiedAt = now
		existing.ExternalOrganization = *next
		return cloneOrg(next), nil
	}

	if _, taken := s.b.orgs[next.ID]; taken {
		return nil, store.ErrConflict
	}
	next.CreatedAt = now
	next.ModifiedAt = now
	s.b.orgs[next.ID] = &orgRow{ExternalOrganization: *next}
	return cloneOrg(next), nil
}

func (s *externalOrganizationStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row := s.b.findOrg(platform, externalID)
	if row == nil || row.DeletedAt != nil {
		return false, nil
	}
	now := s.b.timestamp()
	row.DeletedAt = timePtr(now)
	row.InstallationID = nil
	row.ModifiedAt = now
	return true, nil
}

// findOrg expects the caller to hold the lock.
func (b *Backend) findOrg(platform model.Platform, externalID int64) *orgRow {
	for _, row := range b.orgs {
		if row.Platform == platform && row.ExternalID == externalID {
			return row
		}
	}
	return nil
}

func cloneOrg(o *model.ExternalOrganization) *model.ExternalOrganization {
	c := *o
	c.InstallationPermissions = maps.Clone(o.InstallationPermissions)
	c.InstallationCreatedAt = copyTime(o.InstallationCreatedAt)
	c.InstallationUpdatedAt = copyTime(o.InstallationUpdatedAt)
	c.InstallationSuspendedAt = copyTime(o.InstallationSuspendedAt)
	c.DeletedAt = copyTime(o.DeletedAt)
	return &c
}
