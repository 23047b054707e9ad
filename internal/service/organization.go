package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"polar.sh/ghsync/common/id"
	"polar.sh/ghsync/internal/githubapp"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

// AccountFetcher reads installation data from GitHub.
type AccountFetcher interface {
	ListInstallationRepositories(ctx context.Context, installationID int64) ([]model.Repository, error)
	GetAccountProfile(ctx context.Context, installationID int64, login string, isPersonal bool) (model.AccountProfile, error)
}

type OrganizationService interface {
	// Install upserts the installing account and revives it if it was uninstalled.
	Install(ctx context.Context, org model.ExternalOrganization) (*model.ExternalOrganization, error)
	Rename(ctx context.Context, externalID int64, login string) (*model.ExternalOrganization, error)
	Suspend(ctx context.Context, externalID int64, at time.Time, by *int64) (*model.ExternalOrganization, error)
	Unsuspend(ctx context.Context, externalID int64) (*model.ExternalOrganization, error)
	Uninstall(ctx context.Context, externalID int64) error
	UpdatePermissions(ctx context.Context, externalID int64, perms map[string]string) (*model.ExternalOrganization, error)
	GetByExternalID(ctx context.Context, externalID int64) (*model.ExternalOrganization, error)
	GetByInstallationID(ctx context.Context, installationID int64) (*model.ExternalOrganization, error)
	Get(ctx context.Context, id int64, allowDeleted bool) (*model.ExternalOrganization, error)
}

type organizationService struct {
	txRunner TxRunner
	fetcher  AccountFetcher
}

// NewOrganizationService wires the service. fetcher may be nil, in which case
// profiles are not backfilled.
func NewOrganizationService(txRunner TxRunner, fetcher AccountFetcher) OrganizationService {
	return &organizationService{txRunner: txRunner, fetcher: fetcher}
}

func (s *organizationService) Install(ctx context.Context, org model.ExternalOrganization) (*model.ExternalOrganization, error) {
	if org.ExternalID == 0 || org.Name == "" {
		return nil, NewPermanentError("install organization", fmt.Errorf("%w: account id and login are required", ErrInvalidDelivery))
	}
	org.Platform = model.PlatformGitHub
	org.DeletedAt = nil
	if org.InstallationPermissions == nil {
		org.InstallationPermissions = map[string]string{}
	}

	if err := s.backfillProfile(ctx, &org); err != nil {
		return nil, err
	}

	var saved *model.ExternalOrganization
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		existing, err := sp.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, org.ExternalID)
		switch {
		case err == nil:
			org.ID = existing.ID
			if org.InstallationCreatedAt == nil {
				org.InstallationCreatedAt = existing.InstallationCreatedAt
			}
		case errors.Is(err, store.ErrNotFound):
			org.ID = id.New()
		default:
			return fmt.Errorf("looking up organization: %w", err)
		}

		saved, err = sp.ExternalOrganizations().Upsert(ctx, &org)
		if err != nil {
			return fmt.Errorf("upserting organization: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "organization installed",
		"organization_id", saved.ID,
		"external_id", saved.ExternalID,
		"name", saved.Name)

	return saved, nil
}

// backfillProfile merges the REST profile into org. Permanent API failures
// (e.g. a 404 for a renamed account) are logged and skipped.
func (s *organizationService) backfillProfile(ctx context.Context, org *model.ExternalOrganization) error {
	if s.fetcher == nil || org.InstallationID == nil {
		return nil
	}

	profile, err := s.fetcher.GetAccountProfile(ctx, *org.InstallationID, org.Name, org.IsPersonal)
	if err != nil {
		if githubapp.IsRetryable(err) {
			return fmt.Errorf("fetching account profile: %w", err)
		}
		slog.WarnContext(ctx, "skipping account profile backfill",
			"name", org.Name,
			"error", err)
		return nil
	}

	org.ApplyProfile(profile)
	return nil
}

func (s *organizationService) Rename(ctx context.Context, externalID int64, login string) (*model.ExternalOrganization, error) {
	return s.update(ctx, externalID, func(org *model.ExternalOrganization) {
		org.Name = login
	})
}

func (s *organizationService) Suspend(ctx context.Context, externalID int64, at time.Time, by *int64) (*model.ExternalOrganization, error) {
	return s.update(ctx, externalID, func(org *model.ExternalOrganization) {
		org.InstallationSuspendedAt = &at
		org.InstallationSuspendedBy = by
	})
}

func (s *organizationService) Unsuspend(ctx context.Context, externalID int64) (*model.ExternalOrganization, error) {
	return s.update(ctx, externalID, func(org *model.ExternalOrganization) {
		org.InstallationSuspendedAt = nil
		org.InstallationSuspendedBy = nil
	})
}

// UpdatePermissions replaces the stored mapping with the payload's full set.
func (s *organizationService) UpdatePermissions(ctx context.Context, externalID int64, perms map[string]string) (*model.ExternalOrganization, error) {
	return s.update(ctx, externalID, func(org *model.ExternalOrganization) {
		org.InstallationPermissions = maps.Clone(perms)
		if org.InstallationPermissions == nil {
			org.InstallationPermissions = map[string]string{}
		}
	})
}

func (s *organizationService) Uninstall(ctx context.Context, externalID int64) error {
	return s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		deleted, err := sp.ExternalOrganizations().SoftDelete(ctx, model.PlatformGitHub, externalID)
		if err != nil {
			return fmt.Errorf("soft deleting organization: %w", err)
		}
		if !deleted {
			slog.InfoContext(ctx, "organization already gone on uninstall", "external_id", externalID)
		}
		return nil
	})
}

// update loads the live organization, applies fn and writes it back.
func (s *organizationService) update(ctx context.Context, externalID int64, fn func(org *model.ExternalOrganization)) (*model.ExternalOrganization, error) {
	var saved *model.ExternalOrganization
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		org, err := sp.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, externalID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: external id %d", ErrOrganizationNotFound, externalID)
			}
			return fmt.Errorf("looking up organization: %w", err)
		}
		if org.IsDeleted() {
			return NewPermanentError("update organization", fmt.Errorf("%w: external id %d is uninstalled", ErrOrganizationNotFound, externalID))
		}

		fn(org)

		saved, err = sp.ExternalOrganizations().Upsert(ctx, org)
		if err != nil {
			return fmt.Errorf("updating organization: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *organizationService) GetByExternalID(ctx context.Context, externalID int64) (*model.ExternalOrganization, error) {
	var org *model.ExternalOrganization
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		org, err = sp.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, externalID)
		return err
	})
	return org, err
}

func (s *organizationService) GetByInstallationID(ctx context.Context, installationID int64) (*model.ExternalOrganization, error) {
	var org *model.ExternalOrganization
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		org, err = sp.ExternalOrganizations().GetByInstallationID(ctx, installationID)
		return err
	})
	return org, err
}

func (s *organizationService) Get(ctx context.Context, id int64, allowDeleted bool) (*model.ExternalOrganization, error) {
	var org *model.ExternalOrganization
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		org, err = sp.ExternalOrganizations().GetByID(ctx, id, allowDeleted)
		return err
	})
	return org, err
}
