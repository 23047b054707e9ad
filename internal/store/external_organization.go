package store

import (
	"context"
	"encoding/json"
	"fmt"

	"polar.sh/ghsync/core/db/sqlc"
	"polar.sh/ghsync/internal/model"
)

type externalOrganizationStore struct {
	queries *sqlc.Queries
}

func newExternalOrganizationStore(queries *sqlc.Queries) ExternalOrganizationStore {
	return &externalOrganizationStore{queries: queries}
}

func (s *externalOrganizationStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.ExternalOrganization, error) {
	row, err := s.queries.GetExternalOrganization(ctx, sqlc.GetExternalOrganizationParams{
		ID:           id,
		AllowDeleted: allowDeleted,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toExternalOrganizationModel(row)
}

func (s *externalOrganizationStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.ExternalOrganization, error) {
	row, err := s.queries.GetExternalOrganizationByExternalID(ctx, sqlc.GetExternalOrganizationByExternalIDParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toExternalOrganizationModel(row)
}

func (s *externalOrganizationStore) GetByInstallationID(ctx context.Context, installationID int64) (*model.ExternalOrganization, error) {
	row, err := s.queries.GetExternalOrganizationByInstallationID(ctx, &installationID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toExternalOrganizationModel(row)
}

func (s *externalOrganizationStore) Upsert(ctx context.Context, org *model.ExternalOrganization) (*model.ExternalOrganization, error) {
	perms := org.InstallationPermissions
	if perms == nil {
		perms = map[string]string{}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("marshaling installation permissions: %w", err)
	}

	row, err := s.queries.UpsertExternalOrganization(ctx, sqlc.UpsertExternalOrganizationParams{
		ID:                      org.ID,
		Platform:                string(org.Platform),
		ExternalID:              org.ExternalID,
		Name:                    org.Name,
		AvatarUrl:               org.AvatarURL,
		IsPersonal:              org.IsPersonal,
		InstallationID:          org.InstallationID,
		InstallationCreatedAt:   toTimestamptz(org.InstallationCreatedAt),
		InstallationUpdatedAt:   toTimestamptz(org.InstallationUpdatedAt),
		InstallationSuspendedAt: toTimestamptz(org.InstallationSuspendedAt),
		InstallationSuspendedBy: org.InstallationSuspendedBy,
		InstallationPermissions: permsJSON,
		PrettyName:              org.PrettyName,
		Company:                 org.Company,
		Blog:                    org.Blog,
		Location:                org.Location,
		Email:                   org.Email,
		Bio:                     org.Bio,
		TwitterUsername:         org.TwitterUsername,
		DeletedAt:               toTimestamptz(org.DeletedAt),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toExternalOrganizationModel(row)
}

func (s *externalOrganizationStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	n, err := s.queries.SoftDeleteExternalOrganization(ctx, sqlc.SoftDeleteExternalOrganizationParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func toExternalOrganizationModel(row sqlc.ExternalOrganization) (*model.ExternalOrganization, error) {
	perms := map[string]string{}
	if len(row.InstallationPermissions) > 0 {
		if err := json.Unmarshal(row.InstallationPermissions, &perms); err != nil {
			return nil, fmt.Errorf("unmarshaling installation permissions: %w", err)
		}
	}

	return &model.ExternalOrganization{
		ID:                      row.ID,
		Platform:                model.Platform(row.Platform),
		ExternalID:              row.ExternalID,
		Name:                    row.Name,
		AvatarURL:               row.AvatarUrl,
		IsPersonal:              row.IsPersonal,
		InstallationID:          row.InstallationID,
		InstallationCreatedAt:   fromTimestamptz(row.InstallationCreatedAt),
		InstallationUpdatedAt:   fromTimestamptz(row.InstallationUpdatedAt),
		InstallationSuspendedAt: fromTimestamptz(row.InstallationSuspendedAt),
		InstallationSuspendedBy: row.InstallationSuspendedBy,
		InstallationPermissions: perms,
		PrettyName:              row.PrettyName,
		Company:                 row.Company,
		Blog:                    row.Blog,
		Location:                row.Location,
		Email:                   row.Email,
		Bio:                     row.Bio,
		TwitterUsername:         row.TwitterUsername,
		CreatedAt:               row.CreatedAt.Time,
		ModifiedAt:              row.ModifiedAt.Time,
		DeletedAt:               fromTimestamptz(row.DeletedAt),
	}, nil
}
