package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polar.sh/ghsync/common/id"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

type RepositoryService interface {
	// AddRepositories upserts each repository under org, reviving soft-deleted rows.
	AddRepositories(ctx context.Context, org *model.ExternalOrganization, repos []model.Repository) ([]model.Repository, error)
	// SyncInstallationRepositories fetches every page of the installation's repositories and upserts them.
	SyncInstallationRepositories(ctx context.Context, org *model.ExternalOrganization) ([]model.Repository, error)
	RemoveRepositories(ctx context.Context, externalIDs []int64) error
	// Transfer moves a repository to the organization with newOwnerExternalID.
	// When that organization is unknown the repository is soft-deleted and nil is returned.
	Transfer(ctx context.Context, repo model.Repository, newOwnerExternalID int64) (*model.Repository, error)
	Rename(ctx context.Context, org *model.ExternalOrganization, repo model.Repository) (*model.Repository, error)
	UpdateFromPayload(ctx context.Context, org *model.ExternalOrganization, repo model.Repository) (*model.Repository, error)
	Delete(ctx context.Context, externalID int64) error
	Get(ctx context.Context, id int64, allowDeleted bool) (*model.Repository, error)
	GetByExternalID(ctx context.Context, externalID int64) (*model.Repository, error)
}

type repositoryService struct {
	txRunner TxRunner
	fetcher  AccountFetcher
}

func NewRepositoryService(txRunner TxRunner, fetcher AccountFetcher) RepositoryService {
	return &repositoryService{txRunner: txRunner, fetcher: fetcher}
}

func (s *repositoryService) AddRepositories(ctx context.Context, org *model.ExternalOrganization, repos []model.Repository) ([]model.Repository, error) {
	saved := make([]model.Repository, 0, len(repos))
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		for _, repo := range repos {
			r, err := upsertRepository(ctx, sp, org.ID, repo)
			if err != nil {
				return err
			}
			saved = append(saved, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "repositories added",
		"organization_id", org.ID,
		"count", len(saved))

	return saved, nil
}

func (s *repositoryService) SyncInstallationRepositories(ctx context.Context, org *model.ExternalOrganization) ([]model.Repository, error) {
	if s.fetcher == nil {
		return nil, nil
	}
	if org.InstallationID == nil {
		return nil, NewPermanentError("sync installation repositories", fmt.Errorf("organization %d has no installation", org.ID))
	}

	repos, err := s.fetcher.ListInstallationRepositories(ctx, *org.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("listing installation repositories: %w", err)
	}
	return s.AddRepositories(ctx, org, repos)
}

func (s *repositoryService) RemoveRepositories(ctx context.Context, externalIDs []int64) error {
	return s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		for _, externalID := range externalIDs {
			if _, err := sp.Repositories().SoftDelete(ctx, model.PlatformGitHub, externalID); err != nil {
				return fmt.Errorf("soft deleting repository %d: %w", externalID, err)
			}
		}
		return nil
	})
}

func (s *repositoryService) Transfer(ctx context.Context, repo model.Repository, newOwnerExternalID int64) (*model.Repository, error) {
	var saved *model.Repository
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		dest, err := sp.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, newOwnerExternalID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("looking up destination organization: %w", err)
		}

		if dest == nil || dest.IsDeleted() {
			// Moved out of every installation we know about.
			if _, err := sp.Repositories().SoftDelete(ctx, model.PlatformGitHub, repo.ExternalID); err != nil {
				return fmt.Errorf("soft deleting transferred repository: %w", err)
			}
			slog.InfoContext(ctx, "repository transferred to unknown organization, removed",
				"external_id", repo.ExternalID,
				"new_owner_external_id", newOwnerExternalID)
			return nil
		}

		saved, err = upsertRepository(ctx, sp, dest.ID, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *repositoryService) Rename(ctx context.Context, org *model.ExternalOrganization, repo model.Repository) (*model.Repository, error) {
	return s.UpdateFromPayload(ctx, org, repo)
}

func (s *repositoryService) UpdateFromPayload(ctx context.Context, org *model.ExternalOrganization, repo model.Repository) (*model.Repository, error) {
	var saved *model.Repository
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		saved, err = upsertRepository(ctx, sp, org.ID, repo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *repositoryService) Delete(ctx context.Context, externalID int64) error {
	return s.RemoveRepositories(ctx, []int64{externalID})
}

func (s *repositoryService) Get(ctx context.Context, id int64, allowDeleted bool) (*model.Repository, error) {
	var repo *model.Repository
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		repo, err = sp.Repositories().GetByID(ctx, id, allowDeleted)
		return err
	})
	return repo, err
}

func (s *repositoryService) GetByExternalID(ctx context.Context, externalID int64) (*model.Repository, error) {
	var repo *model.Repository
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		repo, err = sp.Repositories().GetByExternalID(ctx, model.PlatformGitHub, externalID)
		return err
	})
	return repo, err
}

// upsertRepository writes repo under organizationID. A live row holding the
// same name with another external id is stale (names are unique per owner on
// GitHub) and is soft-deleted first.
func upsertRepository(ctx context.Context, sp StoreProvider, organizationID int64, repo model.Repository) (*model.Repository, error) {
	repo.Platform = model.PlatformGitHub
	repo.OrganizationID = organizationID

	live, err := sp.Repositories().GetLiveByName(ctx, organizationID, repo.Name)
	switch {
	case err == nil && live.ExternalID != repo.ExternalID:
		if _, err := sp.Repositories().SoftDelete(ctx, live.Platform, live.ExternalID); err != nil {
			return nil, fmt.Errorf("soft deleting stale repository %q: %w", live.Name, err)
		}
		slog.InfoContext(ctx, "soft deleted stale repository with reused name",
			"repository_id", live.ID,
			"name", live.Name)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("looking up repository by name: %w", err)
	}

	existing, err := sp.Repositories().GetByExternalID(ctx, model.PlatformGitHub, repo.ExternalID)
	switch {
	case err == nil:
		repo.ID = existing.ID
	case errors.Is(err, store.ErrNotFound):
		repo.ID = id.New()
	default:
		return nil, fmt.Errorf("looking up repository: %w", err)
	}

	saved, err := sp.Repositories().Upsert(ctx, &repo)
	if err != nil {
		return nil, fmt.Errorf("upserting repository %q: %w", repo.Name, err)
	}
	return saved, nil
}
