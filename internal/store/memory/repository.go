package memory

import (
	"context"
	"sort"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

type repoRow struct {
	model.Repository
}

type repositoryStore struct {
	b *Backend
}

func (s *repositoryStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Repository, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row, ok := s.b.repos[id]
	if !ok || (row.DeletedAt != nil && !allowDeleted) {
		return nil, store.ErrNotFound
	}
	return cloneRepo(&row.Repository), nil
}

func (s *repositoryStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Repository, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row := s.b.findRepo(platform, externalID)
	if row == nil {
		return nil, store.ErrNotFound
	}
	return cloneRepo(&row.Repository), nil
}

func (s *repositoryStore) GetLiveByName(ctx context.Context, organizationID int64, name string) (*model.Repository, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row := s.b.findLiveRepoByName(organizationID, name)
	if row == nil {
		return nil, store.ErrNotFound
	}
	return cloneRepo(&row.Repository), nil
}

func (s *repositoryStore) ListByOrganization(ctx context.Context, organizationID int64) ([]model.Repository, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	result := make([]model.Repository, 0)
	for _, row := range s.b.repos {
		if row.OrganizationID == organizationID && row.DeletedAt == nil {
			result = append(result, *cloneRepo(&row.Repository))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *repositoryStore) Upsert(ctx context.Context, repo *model.Repository) (*model.Repository, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	// Same partial unique index as postgres: one live name per organization.
	if live := s.b.findLiveRepoByName(repo.OrganizationID, repo.Name); live != nil &&
		!(live.Platform == repo.Platform && live.ExternalID == repo.ExternalID) {
		return nil, store.ErrConflict
	}

	now := s.b.timestamp()
	next := cloneRepo(repo)
	next.DeletedAt = nil
	next.ModifiedAt = now

	if existing := s.b.findRepo(repo.Platform, repo.ExternalID); existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		existing.Repository = *next
		return cloneRepo(next), nil
	}

	if _, taken := s.b.repos[next.ID]; taken {
		return nil, store.ErrConflict
	}
	next.CreatedAt = now
	s.b.repos[next.ID] = &repoRow{Repository: *next}
	return cloneRepo(next), nil
}

func (s *repositoryStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row := s.b.findRepo(platform, externalID)
	if row == nil || row.DeletedAt != nil {
		return false, nil
	}
	now := s.b.timestamp()
	row.DeletedAt = timePtr(now)
	row.ModifiedAt = now
	return true, nil
}

func (b *Backend) findRepo(platform model.Platform, externalID int64) *repoRow {
	for _, row := range b.repos {
		if row.Platform == platform && row.ExternalID == externalID {
			return row
		}
	}
	return nil
}

func (b *Backend) findLiveRepoByName(organizationID int64, name string) *repoRow {
	for _, row := range b.repos {
		if row.OrganizationID == organizationID && row.Name == name && row.DeletedAt == nil {
			return row
		}
	}
	return nil
}

func cloneRepo(r *model.Repository) *model.Repository {
	c := *r
	c.DeletedAt = copyTime(r.DeletedAt)
	return &c
}
