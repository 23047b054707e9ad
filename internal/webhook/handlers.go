package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v71/github"
	"github.com/samber/lo"

	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/mapper"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/store"
)

// BadgeTrigger runs after an issue event has been stored.
type BadgeTrigger interface {
	AfterIssueSync(ctx context.Context, org *model.ExternalOrganization, repo *model.Repository, issue *model.Issue, action badge.Action) error
}

// Handlers holds the task handlers behind the route table.
type Handlers struct {
	orgs   service.OrganizationService
	repos  service.RepositoryService
	issues service.IssueService
	badge  BadgeTrigger
}

// NewHandlers wires the handlers. trigger may be nil to skip badge side effects.
func NewHandlers(orgs service.OrganizationService, repos service.RepositoryService, issues service.IssueService, trigger BadgeTrigger) *Handlers {
	return &Handlers{
		orgs:   orgs,
		repos:  repos,
		issues: issues,
		badge:  trigger,
	}
}

func (h *Handlers) InstallationCreated(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationEvent) error {
	if e.Installation == nil || e.Installation.Account == nil {
		return unexpectedPayload(d, "installation account missing")
	}

	org, err := h.orgs.Install(ctx, mapper.Organization(e.Installation))
	if err != nil {
		return err
	}

	if _, err := h.repos.AddRepositories(ctx, org, mapper.Repositories(e.Repositories)); err != nil {
		return err
	}

	// The payload only lists the first batch of repositories; page the rest.
	if _, err := h.repos.SyncInstallationRepositories(ctx, org); err != nil {
		return err
	}
	return nil
}

func (h *Handlers) InstallationDeleted(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationEvent) error {
	if e.Installation == nil || e.Installation.Account == nil {
		return unexpectedPayload(d, "installation account missing")
	}
	return h.orgs.Uninstall(ctx, e.Installation.Account.GetID())
}

func (h *Handlers) InstallationSuspend(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationEvent) error {
	if e.Installation == nil || e.Installation.Account == nil {
		return unexpectedPayload(d, "installation account missing")
	}

	at := d.CreatedAt
	if e.Installation.SuspendedAt != nil {
		at = e.Installation.GetSuspendedAt().Time
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var by *int64
	switch {
	case e.Installation.SuspendedBy != nil:
		by = github.Ptr(e.Installation.SuspendedBy.GetID())
	case e.Sender != nil:
		by = github.Ptr(e.Sender.GetID())
	}

	_, err := h.orgs.Suspend(ctx, e.Installation.Account.GetID(), at, by)
	return err
}

func (h *Handlers) InstallationUnsuspend(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationEvent) error {
	if e.Installation == nil || e.Installation.Account == nil {
		return unexpectedPayload(d, "installation account missing")
	}
	_, err := h.orgs.Unsuspend(ctx, e.Installation.Account.GetID())
	return err
}

func (h *Handlers) InstallationNewPermissionsAccepted(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationEvent) error {
	if e.Installation == nil || e.Installation.Account == nil {
		return unexpectedPayload(d, "installation account missing")
	}

	_, err := h.orgs.GetByExternalID(ctx, e.Installation.Account.GetID())
	switch {
	case errors.Is(err, store.ErrNotFound):
		// The payload carries the full installation; store it as on created.
		org, err := h.orgs.Install(ctx, mapper.Organization(e.Installation))
		if err != nil {
			return err
		}
		_, err = h.repos.SyncInstallationRepositories(ctx, org)
		return err
	case err != nil:
		return fmt.Errorf("looking up organization: %w", err)
	}

	_, err = h.orgs.UpdatePermissions(ctx, e.Installation.Account.GetID(), mapper.Permissions(e.Installation.GetPermissions()))
	return err
}

func (h *Handlers) RepositoriesAdded(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationRepositoriesEvent) error {
	org, err := h.organizationOrInstall(ctx, d, e.Installation)
	if err != nil {
		return err
	}

	if _, err := h.repos.AddRepositories(ctx, org, mapper.Repositories(e.RepositoriesAdded)); err != nil {
		return err
	}

	if _, err := h.repos.SyncInstallationRepositories(ctx, org); err != nil {
		return err
	}
	return nil
}

func (h *Handlers) RepositoriesRemoved(ctx context.Context, d *model.WebhookDelivery, e *github.InstallationRepositoriesEvent) error {
	if e.Installation == nil {
		return unexpectedPayload(d, "installation missing")
	}
	ids := lo.Map(e.RepositoriesRemoved, func(r *github.Repository, _ int) int64 {
		return r.GetID()
	})
	return h.repos.RemoveRepositories(ctx, ids)
}

func (h *Handlers) OrganizationRenamed(ctx context.Context, d *model.WebhookDelivery, e *github.OrganizationEvent) error {
	if e.Organization == nil || e.Organization.GetLogin() == "" {
		return unexpectedPayload(d, "organization missing")
	}
	_, err := h.orgs.Rename(ctx, e.Organization.GetID(), e.Organization.GetLogin())
	return err
}

// organizationFor resolves the live organization behind an installation.
// A missing organization is retryable: the installation event may still be
// in flight.
func (h *Handlers) organizationFor(ctx context.Context, d *model.WebhookDelivery, installation *github.Installation) (*model.ExternalOrganization, error) {
	if installation == nil {
		return nil, unexpectedPayload(d, "installation missing")
	}

	if installation.Account != nil {
		org, err := h.orgs.GetByExternalID(ctx, installation.Account.GetID())
		switch {
		case err == nil && org.IsDeleted():
			return nil, service.NewPermanentError("resolve organization",
				fmt.Errorf("%w: %s is uninstalled", service.ErrOrganizationNotFound, org.Name))
		case err == nil:
			return org, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("looking up organization: %w", err)
		}
	}

	org, err := h.orgs.GetByInstallationID(ctx, installation.GetID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, service.NewRetryableError("resolve organization",
				fmt.Errorf("%w: installation %d", service.ErrOrganizationNotFound, installation.GetID()))
		}
		return nil, fmt.Errorf("looking up organization by installation: %w", err)
	}
	return org, nil
}

// organizationOrInstall is organizationFor, except that an organization we
// have never seen is stored from the installation payload. Uninstalled
// organizations still fail permanently.
func (h *Handlers) organizationOrInstall(ctx context.Context, d *model.WebhookDelivery, installation *github.Installation) (*model.ExternalOrganization, error) {
	org, err := h.organizationFor(ctx, d, installation)
	if err == nil || !errors.Is(err, service.ErrOrganizationNotFound) || !service.IsRetryable(err) {
		return org, err
	}
	if installation.Account == nil {
		return nil, err
	}
	return h.orgs.Install(ctx, mapper.Organization(installation))
}

func logSkip(ctx context.Context, d *model.WebhookDelivery, reason string, args ...any) {
	slog.InfoContext(ctx, "skipping webhook delivery",
		append([]any{"delivery_id", d.DeliveryID, "reason", reason}, args...)...)
}
