package badge_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/model"
)

type recordingEmbedder struct {
	embedded []badge.EmbedParams
	removed  []badge.EmbedParams
	err      error
}

func (r *recordingEmbedder) Embed(ctx context.Context, p badge.EmbedParams) error {
	r.embedded = append(r.embedded, p)
	return r.err
}

func (r *recordingEmbedder) Remove(ctx context.Context, p badge.EmbedParams) error {
	r.removed = append(r.removed, p)
	return r.err
}

var _ = Describe("Trigger", func() {
	var (
		ctx      context.Context
		embedder *recordingEmbedder
		trigger  *badge.Trigger
		org      *model.ExternalOrganization
		repo     *model.Repository
		issue    *model.Issue
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = &recordingEmbedder{}
		trigger = badge.NewTrigger(config.BadgeConfig{Enabled: true, Label: "Fund"}, embedder)
		org = &model.ExternalOrganization{ID: 1, Name: "HubbenCo"}
		repo = &model.Repository{ID: 2, Name: "testing"}
		issue = &model.Issue{ID: 3, Labels: []model.Label{{Name: "Fund"}}}
	})

	It("embeds exactly once for an opened issue carrying the label", func() {
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionOpened)).To(Succeed())
		Expect(embedder.embedded).To(HaveLen(1))
		Expect(embedder.embedded[0]).To(Equal(badge.EmbedParams{
			Organization:       org,
			Repository:         repo,
			Issue:              issue,
			TriggeredFromLabel: true,
		}))
	})

	It("fires again on a later edit", func() {
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionOpened)).To(Succeed())
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionEdited)).To(Succeed())
		Expect(embedder.embedded).To(HaveLen(2))
	})

	It("matches the label name exactly", func() {
		issue.Labels = []model.Label{{Name: "fund"}}
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionLabeled)).To(Succeed())
		Expect(embedder.embedded).To(BeEmpty())
	})

	It("does nothing when disabled", func() {
		trigger = badge.NewTrigger(config.BadgeConfig{Enabled: false, Label: "Fund"}, embedder)
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionOpened)).To(Succeed())
		Expect(embedder.embedded).To(BeEmpty())
	})

	It("ignores actions that do not embed", func() {
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.Action("closed"))).To(Succeed())
		Expect(embedder.embedded).To(BeEmpty())
	})

	It("removes an embedded badge once the label is gone", func() {
		issue.Labels = nil
		issue.PledgeBadgeCurrentlyEmbedded = true
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionUnlabeled)).To(Succeed())
		Expect(embedder.removed).To(HaveLen(1))
	})

	It("leaves the badge when an unrelated label is removed", func() {
		issue.PledgeBadgeCurrentlyEmbedded = true
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionUnlabeled)).To(Succeed())
		Expect(embedder.removed).To(BeEmpty())
	})

	It("propagates embedder errors", func() {
		embedder.err = errors.New("boom")
		Expect(trigger.AfterIssueSync(ctx, org, repo, issue, badge.ActionOpened)).To(MatchError("boom"))
	})
})

var _ = Describe("badge markers", func() {
	It("appends and strips the block", func() {
		body := badge.AddBadge("Steps to reproduce\n", "BADGE")
		Expect(body).To(Equal("Steps to reproduce\n\n" + badge.MarkerStart + "\nBADGE\n" + badge.MarkerEnd))
		Expect(badge.HasBadge(body)).To(BeTrue())
		Expect(badge.RemoveBadge(body)).To(Equal("Steps to reproduce"))
	})

	It("handles an empty body", func() {
		Expect(badge.AddBadge("", "BADGE")).To(Equal(badge.MarkerStart + "\nBADGE\n" + badge.MarkerEnd))
	})
})
