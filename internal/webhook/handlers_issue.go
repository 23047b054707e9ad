package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/mapper"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

var errRepositoryGone = errors.New("repository is deleted")

func (h *Handlers) IssueOpened(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	return h.IssueUpsert(ctx, d, e)
}

func (h *Handlers) IssueEdited(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	return h.IssueUpsert(ctx, d, e)
}

func (h *Handlers) IssueLabeled(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	return h.IssueUpsert(ctx, d, e)
}

// IssueUpsert stores the issue from the payload and runs the badge trigger.
func (h *Handlers) IssueUpsert(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	if e.Issue == nil || e.Repo == nil {
		return unexpectedPayload(d, "issue or repository missing")
	}

	org, repo, err := h.repositoryFor(ctx, d, e.Installation, e.Repo)
	if errors.Is(err, errRepositoryGone) {
		logSkip(ctx, d, "repository deleted", "repository_external_id", e.Repo.GetID())
		return nil
	}
	if err != nil {
		return err
	}

	issue, err := h.issues.Upsert(ctx, repo, mapper.Issue(e.Issue))
	if err != nil {
		return err
	}
	if issue.IsDeleted() {
		logSkip(ctx, d, "issue deleted", "issue_id", issue.ID)
		return nil
	}

	if h.badge == nil {
		return nil
	}
	return h.badge.AfterIssueSync(ctx, org, repo, issue, badge.Action(e.GetAction()))
}

func (h *Handlers) IssueDeleted(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	if e.Issue == nil {
		return unexpectedPayload(d, "issue missing")
	}
	return h.issues.SoftDelete(ctx, e.Issue.GetID())
}

// issueTransfer holds the changes block of issues.transferred, which the
// typed event does not expose.
type issueTransfer struct {
	Changes struct {
		NewIssue      *github.Issue      `json:"new_issue"`
		NewRepository *github.Repository `json:"new_repository"`
	} `json:"changes"`
}

func (h *Handlers) IssueTransferred(ctx context.Context, d *model.WebhookDelivery, e *github.IssuesEvent) error {
	if e.Issue == nil {
		return unexpectedPayload(d, "issue missing")
	}

	var transfer issueTransfer
	if err := json.Unmarshal(d.Payload, &transfer); err != nil {
		return unexpectedPayload(d, "decoding transfer changes: %v", err)
	}
	newIssue, newRepo := transfer.Changes.NewIssue, transfer.Changes.NewRepository
	if newIssue == nil || newRepo == nil {
		return unexpectedPayload(d, "transfer changes missing new issue or repository")
	}

	_, repo, err := h.repositoryFor(ctx, d, e.Installation, newRepo)
	if errors.Is(err, errRepositoryGone) {
		logSkip(ctx, d, "destination repository deleted", "repository_external_id", newRepo.GetID())
		return h.issues.SoftDelete(ctx, e.Issue.GetID())
	}
	if err != nil {
		return err
	}

	_, err = h.issues.Transfer(ctx, e.Issue.GetID(), repo, mapper.Issue(newIssue))
	return err
}

// repositoryFor resolves the stored repository for a payload repository.
// A repository not seen yet is stored under the installation's organization.
func (h *Handlers) repositoryFor(ctx context.Context, d *model.WebhookDelivery, installation *github.Installation, ghRepo *github.Repository) (*model.ExternalOrganization, *model.Repository, error) {
	repo, err := h.repos.GetByExternalID(ctx, ghRepo.GetID())
	switch {
	case err == nil && repo.IsDeleted():
		return nil, nil, errRepositoryGone
	case err == nil:
		org, err := h.orgs.Get(ctx, repo.OrganizationID, false)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil, errRepositoryGone
			}
			return nil, nil, fmt.Errorf("loading organization: %w", err)
		}
		return org, repo, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, nil, fmt.Errorf("looking up repository: %w", err)
	}

	org, err := h.organizationFor(ctx, d, installation)
	if err != nil {
		return nil, nil, err
	}
	repo, err = h.repos.UpdateFromPayload(ctx, org, mapper.Repository(ghRepo))
	if err != nil {
		return nil, nil, err
	}
	return org, repo, nil
}
