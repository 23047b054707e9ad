// Package badge embeds the funding badge into issue bodies that carry the
// configured label.
package badge

import (
	"context"
	"log/slog"

	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/internal/model"
)

type Action string

const (
	ActionOpened    Action = "opened"
	ActionEdited    Action = "edited"
	ActionLabeled   Action = "labeled"
	ActionReopened  Action = "reopened"
	ActionUnlabeled Action = "unlabeled"
)

type EmbedParams struct {
	Organization       *model.ExternalOrganization
	Repository         *model.Repository
	Issue              *model.Issue
	TriggeredFromLabel bool
}

// Embedder writes or strips the badge on the issue itself.
type Embedder interface {
	Embed(ctx context.Context, params EmbedParams) error
	Remove(ctx context.Context, params EmbedParams) error
}

type Trigger struct {
	enabled  bool
	label    string
	embedder Embedder
}

func NewTrigger(cfg config.BadgeConfig, embedder Embedder) *Trigger {
	return &Trigger{
		enabled:  cfg.Enabled,
		label:    cfg.Label,
		embedder: embedder,
	}
}

// ContainsBadgeLabel is an exact, case-sensitive name match.
func ContainsBadgeLabel(labels []model.Label, name string) bool {
	return model.ContainsLabel(labels, name)
}

func (t *Trigger) Label() string {
	return t.label
}

// AfterIssueSync runs once per synced issue event. issue is the freshly stored row.
func (t *Trigger) AfterIssueSync(ctx context.Context, org *model.ExternalOrganization, repo *model.Repository, issue *model.Issue, action Action) error {
	if !t.enabled || t.embedder == nil {
		return nil
	}

	params := EmbedParams{
		Organization:       org,
		Repository:         repo,
		Issue:              issue,
		TriggeredFromLabel: true,
	}
	hasLabel := ContainsBadgeLabel(issue.Labels, t.label)

	switch action {
	case ActionOpened, ActionEdited, ActionLabeled, ActionReopened:
		if !hasLabel {
			return nil
		}
		slog.InfoContext(ctx, "embedding funding badge",
			"issue_id", issue.ID,
			"action", string(action))
		return t.embedder.Embed(ctx, params)

	case ActionUnlabeled:
		if hasLabel || !issue.PledgeBadgeCurrentlyEmbedded {
			return nil
		}
		slog.InfoContext(ctx, "removing funding badge",
			"issue_id", issue.ID)
		return t.embedder.Remove(ctx, params)
	}

	return nil
}
