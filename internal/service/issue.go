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

type IssueService interface {
	// Upsert stores issue under repo. Labels are replaced wholesale and the
	// badge label flag is recomputed. A soft-deleted issue stays deleted.
	Upsert(ctx context.Context, repo *model.Repository, issue model.Issue) (*model.Issue, error)
	SoftDelete(ctx context.Context, externalID int64) error
	// Transfer stores the destination issue, carries funding over when the
	// destination has none and soft-deletes the source.
	Transfer(ctx context.Context, oldExternalID int64, newRepo *model.Repository, newIssue model.Issue) (*model.Issue, error)
	Get(ctx context.Context, id int64, allowDeleted bool) (*model.Issue, error)
	GetByExternalID(ctx context.Context, externalID int64) (*model.Issue, error)
}

type issueService struct {
	txRunner   TxRunner
	badgeLabel string
}

func NewIssueService(txRunner TxRunner, badgeLabel string) IssueService {
	return &issueService{txRunner: txRunner, badgeLabel: badgeLabel}
}

func (s *issueService) Upsert(ctx context.Context, repo *model.Repository, issue model.Issue) (*model.Issue, error) {
	var saved *model.Issue
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		saved, err = s.upsert(ctx, sp, repo, issue)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *issueService) upsert(ctx context.Context, sp StoreProvider, repo *model.Repository, issue model.Issue) (*model.Issue, error) {
	issue.Platform = model.PlatformGitHub
	issue.OrganizationID = repo.OrganizationID
	issue.RepositoryID = repo.ID
	if len(issue.Labels) == 0 {
		issue.Labels = nil
	}
	issue.HasPledgeBadgeLabel = s.badgeLabel != "" && model.ContainsLabel(issue.Labels, s.badgeLabel)

	existing, err := sp.Issues().GetByExternalID(ctx, model.PlatformGitHub, issue.ExternalID)
	switch {
	case err == nil:
		issue.ID = existing.ID
	case errors.Is(err, store.ErrNotFound):
		issue.ID = id.New()
	default:
		return nil, fmt.Errorf("looking up issue: %w", err)
	}

	saved, err := sp.Issues().Upsert(ctx, &issue)
	if err != nil {
		return nil, fmt.Errorf("upserting issue: %w", err)
	}
	return saved, nil
}

func (s *issueService) SoftDelete(ctx context.Context, externalID int64) error {
	return s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		deleted, err := sp.Issues().SoftDelete(ctx, model.PlatformGitHub, externalID)
		if err != nil {
			return fmt.Errorf("soft deleting issue: %w", err)
		}
		if !deleted {
			slog.InfoContext(ctx, "issue already gone on delete", "external_id", externalID)
		}
		return nil
	})
}

func (s *issueService) Transfer(ctx context.Context, oldExternalID int64, newRepo *model.Repository, newIssue model.Issue) (*model.Issue, error) {
	var saved *model.Issue
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		dest, err := s.upsert(ctx, sp, newRepo, newIssue)
		if err != nil {
			return err
		}

		old, err := sp.Issues().GetByExternalID(ctx, model.PlatformGitHub, oldExternalID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				saved = dest
				return nil
			}
			return fmt.Errorf("looking up transferred issue: %w", err)
		}

		goal, content := dest.FundingGoal, dest.BadgeCustomContent
		if goal == nil {
			goal = old.FundingGoal
		}
		if content == nil {
			content = old.BadgeCustomContent
		}
		if goal != dest.FundingGoal || content != dest.BadgeCustomContent {
			dest, err = sp.Issues().UpdateFunding(ctx, dest.ID, goal, content)
			if err != nil {
				return fmt.Errorf("carrying funding over: %w", err)
			}
		}

		if _, err := sp.Issues().SoftDelete(ctx, model.PlatformGitHub, oldExternalID); err != nil {
			return fmt.Errorf("soft deleting transferred issue: %w", err)
		}

		saved = dest
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "issue transferred",
		"old_external_id", oldExternalID,
		"issue_id", saved.ID)

	return saved, nil
}

func (s *issueService) Get(ctx context.Context, id int64, allowDeleted bool) (*model.Issue, error) {
	var issue *model.Issue
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		issue, err = sp.Issues().GetByID(ctx, id, allowDeleted)
		return err
	})
	return issue, err
}

func (s *issueService) GetByExternalID(ctx context.Context, externalID int64) (*model.Issue, error) {
	var issue *model.Issue
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		issue, err = sp.Issues().GetByExternalID(ctx, model.PlatformGitHub, externalID)
		return err
	})
	return issue, err
}
