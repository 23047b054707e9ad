package webhook

import (
	"context"

	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/internal/mapper"
	"polar.sh/ghsync/internal/model"
)

func (h *Handlers) RepositoryRenamed(ctx context.Context, d *model.WebhookDelivery, e *github.RepositoryEvent) error {
	if e.Repo == nil {
		return unexpectedPayload(d, "repository missing")
	}
	org, err := h.organizationFor(ctx, d, e.Installation)
	if err != nil {
		return err
	}
	_, err = h.repos.Rename(ctx, org, mapper.Repository(e.Repo))
	return err
}

func (h *Handlers) RepositoryTransferred(ctx context.Context, d *model.WebhookDelivery, e *github.RepositoryEvent) error {
	if e.Repo == nil || e.Repo.Owner == nil {
		return unexpectedPayload(d, "repository owner missing")
	}
	_, err := h.repos.Transfer(ctx, mapper.Repository(e.Repo), e.Repo.Owner.GetID())
	return err
}

// RepositoryChanged handles deleted and every flag change carried in the
// repository object itself.
func (h *Handlers) RepositoryChanged(ctx context.Context, d *model.WebhookDelivery, e *github.RepositoryEvent) error {
	if e.Repo == nil {
		return unexpectedPayload(d, "repository missing")
	}

	if e.GetAction() == "deleted" {
		return h.repos.Delete(ctx, e.Repo.GetID())
	}

	org, err := h.organizationFor(ctx, d, e.Installation)
	if err != nil {
		return err
	}
	_, err = h.repos.UpdateFromPayload(ctx, org, mapper.Repository(e.Repo))
	return err
}
