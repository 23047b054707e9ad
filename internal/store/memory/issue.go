package memory

import (
	"context"
	"slices"
	"time"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/store"
)

type issueRow struct {
	model.Issue
}

type issueStore struct {
	b *Backend
}

func (s *issueStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Issue, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row, ok := s.b.issues[id]
	if !ok || (row.DeletedAt != nil && !allowDeleted) {
		return nil, store.ErrNotFound
	}
	return cloneIssue(&row.Issue), nil
}

func (s *issueStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Issue, error) {
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()

	row := s.b.findIssue(platform, externalID)
	if row == nil {
		return nil, store.ErrNotFound
	}
	return cloneIssue(&row.Issue), nil
}

func (s *issueStore) Upsert(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	now := s.b.timestamp()
	next := cloneIssue(issue)
	if len(next.Labels) == 0 {
		next.Labels = nil
	}
	if len(next.Assignees) == 0 {
		next.Assignees = nil
	}
	next.ModifiedAt = now

	if existing := s.b.findIssue(issue.Platform, issue.ExternalID); existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		next.DeletedAt = copyTime(existing.DeletedAt)
		next.FundingGoal = existing.FundingGoal
		next.BadgeCustomContent = existing.BadgeCustomContent
		next.PledgeBadgeEmbeddedAt = copyTime(existing.PledgeBadgeEmbeddedAt)
		next.PledgeBadgeCurrentlyEmbedded = existing.PledgeBadgeCurrentlyEmbedded
		existing.Issue = *next
		return cloneIssue(next), nil
	}

	if _, taken := s.b.issues[next.ID]; taken {
		return nil, store.ErrConflict
	}
	next.CreatedAt = now
	next.DeletedAt = nil
	next.FundingGoal = nil
	next.BadgeCustomContent = nil
	next.PledgeBadgeEmbeddedAt = nil
	next.PledgeBadgeCurrentlyEmbedded = false
	s.b.issues[next.ID] = &issueRow{Issue: *next}
	return cloneIssue(next), nil
}

func (s *issueStore) UpdateFunding(ctx context.Context, id int64, fundingGoal *int64, badgeCustomContent *string) (*model.Issue, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.issues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row.FundingGoal = fundingGoal
	row.BadgeCustomContent = badgeCustomContent
	row.ModifiedAt = s.b.timestamp()
	return cloneIssue(&row.Issue), nil
}

func (s *issueStore) UpdateBadgeState(ctx context.Context, id int64, embeddedAt *time.Time, currentlyEmbedded bool) (*model.Issue, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row, ok := s.b.issues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row.PledgeBadgeEmbeddedAt = copyTime(embeddedAt)
	row.PledgeBadgeCurrentlyEmbedded = currentlyEmbedded
	row.ModifiedAt = s.b.timestamp()
	return cloneIssue(&row.Issue), nil
}

func (s *issueStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	row := s.b.findIssue(platform, externalID)
	if row == nil || row.DeletedAt != nil {
		return false, nil
	}
	now := s.b.timestamp()
	row.DeletedAt = timePtr(now)
	row.ModifiedAt = now
	return true, nil
}

func (b *Backend) findIssue(platform model.Platform, externalID int64) *issueRow {
	for _, row := range b.issues {
		if row.Platform == platform && row.ExternalID == externalID {
			return row
		}
	}
	return nil
}

func cloneIssue(i *model.Issue) *model.Issue {
	c := *i
	c.Labels = slices.Clone(i.Labels)
	c.Assignees = slices.Clone(i.Assignees)
	if i.Reactions != nil {
		r := *i.Reactions
		c.Reactions = &r
	}
	c.IssueClosedAt = copyTime(i.IssueClosedAt)
	c.IssueModifiedAt = copyTime(i.IssueModifiedAt)
	c.PledgeBadgeEmbeddedAt = copyTime(i.PledgeBadgeEmbeddedAt)
	c.DeletedAt = copyTime(i.DeletedAt)
	return &c
}
