package store

import (
	"context"

	"polar.sh/ghsync/core/db/sqlc"
	"polar.sh/ghsync/internal/model"
)

type repositoryStore struct {
	queries *sqlc.Queries
}

func newRepositoryStore(queries *sqlc.Queries) RepositoryStore {
	return &repositoryStore{queries: queries}
}

func (s *repositoryStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Repository, error) {
	row, err := s.queries.GetRepository(ctx, sqlc.GetRepositoryParams{ID: id, AllowDeleted: allowDeleted})
	if err != nil {
		return nil, mapErr(err)
	}
	return toRepositoryModel(row), nil
}

func (s *repositoryStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Repository, error) {
	row, err := s.queries.GetRepositoryByExternalID(ctx, sqlc.GetRepositoryByExternalIDParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toRepositoryModel(row), nil
}

func (s *repositoryStore) GetLiveByName(ctx context.Context, organizationID int64, name string) (*model.Repository, error) {
	row, err := s.queries.GetLiveRepositoryByName(ctx, sqlc.GetLiveRepositoryByNameParams{
		OrganizationID: organizationID,
		Name:           name,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toRepositoryModel(row), nil
}

func (s *repositoryStore) ListByOrganization(ctx context.Context, organizationID int64) ([]model.Repository, error) {
	rows, err := s.queries.ListRepositoriesByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	result := make([]model.Repository, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toRepositoryModel(row))
	}
	return result, nil
}

func (s *repositoryStore) Upsert(ctx context.Context, repo *model.Repository) (*model.Repository, error) {
	row, err := s.queries.UpsertRepository(ctx, sqlc.UpsertRepositoryParams{
		ID:             repo.ID,
		Platform:       string(repo.Platform),
		ExternalID:     repo.ExternalID,
		OrganizationID: repo.OrganizationID,
		Name:           repo.Name,
		Description:    repo.Description,
		IsPrivate:      repo.IsPrivate,
		IsArchived:     repo.IsArchived,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toRepositoryModel(row), nil
}

func (s *repositoryStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	n, err := s.queries.SoftDeleteRepository(ctx, sqlc.SoftDeleteRepositoryParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func toRepositoryModel(row sqlc.Repository) *model.Repository {
	return &model.Repository{
		ID:             row.ID,
		Platform:       model.Platform(row.Platform),
		ExternalID:     row.ExternalID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		Description:    row.Description,
		IsPrivate:      row.IsPrivate,
		IsArchived:     row.IsArchived,
		CreatedAt:      row.CreatedAt.Time,
		ModifiedAt:     row.ModifiedAt.Time,
		DeletedAt:      fromTimestamptz(row.DeletedAt),
	}
}
