package badge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/internal/githubapp"
	"polar.sh/ghsync/internal/store"
)

const (
	MarkerStart = "<!-- POLAR PLEDGE BADGE START -->"
	MarkerEnd   = "<!-- POLAR PLEDGE BADGE END -->"
)

// GitHubEmbedder edits the issue body through the REST API and records
// the badge state on the issue row.
type GitHubEmbedder struct {
	clients   githubapp.ClientFactory
	issues    store.IssueStore
	publicURL string
	now       func() time.Time
}

func NewGitHubEmbedder(clients githubapp.ClientFactory, issues store.IssueStore, publicURL string) *GitHubEmbedder {
	return &GitHubEmbedder{
		clients:   clients,
		issues:    issues,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		now:       time.Now,
	}
}

func (e *GitHubEmbedder) Embed(ctx context.Context, p EmbedParams) error {
	body := ""
	if p.Issue.Body != nil {
		body = *p.Issue.Body
	}

	if !HasBadge(body) {
		updated := AddBadge(body, e.render(p))
		if err := e.editBody(ctx, p, updated); err != nil {
			return err
		}
	}

	at := e.now().UTC()
	if _, err := e.issues.UpdateBadgeState(ctx, p.Issue.ID, &at, true); err != nil {
		return fmt.Errorf("recording badge state: %w", err)
	}
	return nil
}

func (e *GitHubEmbedder) Remove(ctx context.Context, p EmbedParams) error {
	body := ""
	if p.Issue.Body != nil {
		body = *p.Issue.Body
	}

	if HasBadge(body) {
		if err := e.editBody(ctx, p, RemoveBadge(body)); err != nil {
			return err
		}
	}

	if _, err := e.issues.UpdateBadgeState(ctx, p.Issue.ID, p.Issue.PledgeBadgeEmbeddedAt, false); err != nil {
		return fmt.Errorf("recording badge state: %w", err)
	}
	return nil
}

func (e *GitHubEmbedder) editBody(ctx context.Context, p EmbedParams, body string) error {
	if p.Organization.InstallationID == nil {
		return fmt.Errorf("organization %d has no installation", p.Organization.ID)
	}
	client, err := e.clients.Installation(ctx, *p.Organization.InstallationID)
	if err != nil {
		return err
	}

	_, _, err = client.Issues.Edit(ctx, p.Organization.Name, p.Repository.Name, p.Issue.Number, &github.IssueRequest{
		Body: &body,
	})
	if err != nil {
		return githubapp.WrapAPIError("edit issue body", err)
	}
	return nil
}

func (e *GitHubEmbedder) render(p EmbedParams) string {
	path := fmt.Sprintf("%s/%s/issues/%d", p.Organization.Name, p.Repository.Name, p.Issue.Number)
	svg := fmt.Sprintf("%s/api/github/%s/pledge.svg", e.publicURL, path)

	var b strings.Builder
	if p.Issue.BadgeCustomContent != nil && *p.Issue.BadgeCustomContent != "" {
		b.WriteString(*p.Issue.BadgeCustomContent)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "<a href=\"%s/%s\">\n", e.publicURL, path)
	b.WriteString("<picture>\n")
	fmt.Fprintf(&b, "  <source media=\"(prefers-color-scheme: dark)\" srcset=\"%s?darkmode=1\">\n", svg)
	fmt.Fprintf(&b, "  <img alt=\"Fund with Polar\" src=\"%s\">\n", svg)
	b.WriteString("</picture>\n")
	b.WriteString("</a>")
	return b.String()
}

func HasBadge(body string) bool {
	return strings.Contains(body, MarkerStart)
}

// AddBadge appends the badge block below the existing body.
func AddBadge(body, badge string) string {
	block := MarkerStart + "\n" + badge + "\n" + MarkerEnd
	if strings.TrimSpace(body) == "" {
		return block
	}
	return strings.TrimRight(body, "\n") + "\n\n" + block
}

// RemoveBadge strips every badge block. An unterminated start marker drops the rest of the body.
func RemoveBadge(body string) string {
	for {
		start := strings.Index(body, MarkerStart)
		if start < 0 {
			break
		}
		end := strings.Index(body[start:], MarkerEnd)
		if end < 0 {
			body = body[:start]
			break
		}
		body = body[:start] + body[start+end+len(MarkerEnd):]
	}
	return strings.TrimRight(body, "\n ")
}
