package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"polar.sh/ghsync/core/db/sqlc"
	"polar.sh/ghsync/internal/model"
)

type issueStore struct {
	queries *sqlc.Queries
}

func newIssueStore(queries *sqlc.Queries) IssueStore {
	return &issueStore{queries: queries}
}

func (s *issueStore) GetByID(ctx context.Context, id int64, allowDeleted bool) (*model.Issue, error) {
	row, err := s.queries.GetIssue(ctx, sqlc.GetIssueParams{ID: id, AllowDeleted: allowDeleted})
	if err != nil {
		return nil, mapErr(err)
	}
	return toIssueModel(row)
}

func (s *issueStore) GetByExternalID(ctx context.Context, platform model.Platform, externalID int64) (*model.Issue, error) {
	row, err := s.queries.GetIssueByExternalID(ctx, sqlc.GetIssueByExternalIDParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toIssueModel(row)
}

func (s *issueStore) Upsert(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	labelsJSON, err := marshalNullable(len(issue.Labels) > 0, issue.Labels)
	if err != nil {
		return nil, fmt.Errorf("marshaling labels: %w", err)
	}
	assigneesJSON, err := marshalNullable(len(issue.Assignees) > 0, issue.Assignees)
	if err != nil {
		return nil, fmt.Errorf("marshaling assignees: %w", err)
	}
	reactionsJSON, err := marshalNullable(issue.Reactions != nil, issue.Reactions)
	if err != nil {
		return nil, fmt.Errorf("marshaling reactions: %w", err)
	}

	row, err := s.queries.UpsertIssue(ctx, sqlc.UpsertIssueParams{
		ID:                  issue.ID,
		Platform:            string(issue.Platform),
		ExternalID:          issue.ExternalID,
		OrganizationID:      issue.OrganizationID,
		RepositoryID:        issue.RepositoryID,
		Number:              int32(issue.Number),
		Title:               issue.Title,
		Body:                issue.Body,
		Author:              issue.Author,
		State:               string(issue.State),
		StateReason:         issue.StateReason,
		Labels:              labelsJSON,
		Assignees:           assigneesJSON,
		Comments:            int32(issue.Comments),
		Reactions:           reactionsJSON,
		IssueCreatedAt:      toTimestamptz(&issue.IssueCreatedAt),
		IssueClosedAt:       toTimestamptz(issue.IssueClosedAt),
		IssueModifiedAt:     toTimestamptz(issue.IssueModifiedAt),
		HasPledgeBadgeLabel: issue.HasPledgeBadgeLabel,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toIssueModel(row)
}

func (s *issueStore) UpdateFunding(ctx context.Context, id int64, fundingGoal *int64, badgeCustomContent *string) (*model.Issue, error) {
	row, err := s.queries.UpdateIssueFunding(ctx, sqlc.UpdateIssueFundingParams{
		ID:                 id,
		FundingGoal:        fundingGoal,
		BadgeCustomContent: badgeCustomContent,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toIssueModel(row)
}

func (s *issueStore) UpdateBadgeState(ctx context.Context, id int64, embeddedAt *time.Time, currentlyEmbedded bool) (*model.Issue, error) {
	row, err := s.queries.UpdateIssueBadgeState(ctx, sqlc.UpdateIssueBadgeStateParams{
		ID:                           id,
		PledgeBadgeEmbeddedAt:        toTimestamptz(embeddedAt),
		PledgeBadgeCurrentlyEmbedded: currentlyEmbedded,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return toIssueModel(row)
}

func (s *issueStore) SoftDelete(ctx context.Context, platform model.Platform, externalID int64) (bool, error) {
	n, err := s.queries.SoftDeleteIssue(ctx, sqlc.SoftDeleteIssueParams{
		Platform:   string(platform),
		ExternalID: externalID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// marshalNullable returns nil (SQL NULL) when present is false.
func marshalNullable(present bool, v any) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func toIssueModel(row sqlc.Issue) (*model.Issue, error) {
	var labels []model.Label
	if len(row.Labels) > 0 {
		if err := json.Unmarshal(row.Labels, &labels); err != nil {
			return nil, fmt.Errorf("unmarshaling labels: %w", err)
		}
	}
	var assignees []string
	if len(row.Assignees) > 0 {
		if err := json.Unmarshal(row.Assignees, &assignees); err != nil {
			return nil, fmt.Errorf("unmarshaling assignees: %w", err)
		}
	}
	var reactions *model.Reactions
	if len(row.Reactions) > 0 {
		reactions = &model.Reactions{}
		if err := json.Unmarshal(row.Reactions, reactions); err != nil {
			return nil, fmt.Errorf("unmarshaling reactions: %w", err)
		}
	}

	return &model.Issue{
		ID:                           row.ID,
		Platform:                     model.Platform(row.Platform),
		ExternalID:                   row.ExternalID,
		OrganizationID:               row.OrganizationID,
		RepositoryID:                 row.RepositoryID,
		Number:                       int(row.Number),
		Title:                        row.Title,
		Body:                         row.Body,
		Author:                       row.Author,
		State:                        model.IssueState(row.State),
		StateReason:                  row.StateReason,
		Labels:                       labels,
		Assignees:                    assignees,
		Comments:                     int(row.Comments),
		Reactions:                    reactions,
		IssueCreatedAt:               row.IssueCreatedAt.Time,
		IssueClosedAt:                fromTimestamptz(row.IssueClosedAt),
		IssueModifiedAt:              fromTimestamptz(row.IssueModifiedAt),
		HasPledgeBadgeLabel:          row.HasPledgeBadgeLabel,
		PledgeBadgeEmbeddedAt:        fromTimestamptz(row.PledgeBadgeEmbeddedAt),
		PledgeBadgeCurrentlyEmbedded: row.PledgeBadgeCurrentlyEmbedded,
		BadgeCustomContent:           row.BadgeCustomContent,
		FundingGoal:                  row.FundingGoal,
		CreatedAt:                    row.CreatedAt.Time,
		ModifiedAt:                   row.ModifiedAt.Time,
		DeletedAt:                    fromTimestamptz(row.DeletedAt),
	}, nil
}
