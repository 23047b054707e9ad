package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/store"
	"polar.sh/ghsync/internal/store/memory"
)

var _ = Describe("IssueService", func() {
	var (
		ctx     context.Context
		backend *memory.Backend
		svc     service.IssueService
		repo    *model.Repository
		other   *model.Repository
		issue   model.Issue
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = memory.New()
		txRunner := service.NewStoreTxRunner(backend)
		svc = service.NewIssueService(txRunner, "Fund")

		org, err := service.NewOrganizationService(txRunner, nil).Install(ctx, model.ExternalOrganization{
			ExternalID:     105373340,
			Name:           "HubbenCo",
			InstallationID: ptr(int64(30560232)),
		})
		Expect(err).NotTo(HaveOccurred())

		repos, err := service.NewRepositoryService(txRunner, nil).AddRepositories(ctx, org, []model.Repository{
			{ExternalID: 537077294, Name: "testing"},
			{ExternalID: 537077295, Name: "other"},
		})
		Expect(err).NotTo(HaveOccurred())
		repo, other = &repos[0], &repos[1]

		issue = model.Issue{
			ExternalID:     1372046001,
			Number:         7,
			Title:          "Found a bug",
			Body:           ptr("It crashes"),
			State:          model.IssueStateOpen,
			IssueCreatedAt: time.Date(2022, 9, 15, 8, 0, 0, 0, time.UTC),
		}
	})

	Describe("Upsert", func() {
		It("stores labels in payload order and flags the badge label", func() {
			issue.Labels = []model.Label{
				{ID: 3, Name: "bug"},
				{ID: 1, Name: "Fund"},
				{ID: 2, Name: "help wanted"},
			}

			saved, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.RepositoryID).To(Equal(repo.ID))
			Expect(saved.OrganizationID).To(Equal(repo.OrganizationID))
			Expect(saved.HasPledgeBadgeLabel).To(BeTrue())

			stored, err := svc.GetByExternalID(ctx, 1372046001)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Labels).To(HaveLen(3))
			Expect(stored.Labels[0].Name).To(Equal("bug"))
			Expect(stored.Labels[1].Name).To(Equal("Fund"))
			Expect(stored.Labels[2].Name).To(Equal("help wanted"))
		})

		It("clears the badge label flag when the label goes away", func() {
			issue.Labels = []model.Label{{ID: 1, Name: "Fund"}}
			first, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())

			issue.Labels = []model.Label{}
			second, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.HasPledgeBadgeLabel).To(BeFalse())
			Expect(second.Labels).To(BeNil())
		})

		It("matches the badge label case sensitively", func() {
			issue.Labels = []model.Label{{ID: 1, Name: "fund"}}
			saved, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.HasPledgeBadgeLabel).To(BeFalse())
		})
	})

	Describe("SoftDelete", func() {
		It("hides the issue and keeps it deleted on later edits", func() {
			saved, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.SoftDelete(ctx, 1372046001)).To(Succeed())
			_, err = svc.Get(ctx, saved.ID, false)
			Expect(err).To(MatchError(store.ErrNotFound))

			issue.Title = "edited after delete"
			_, err = svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())

			stored, err := svc.Get(ctx, saved.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.DeletedAt).NotTo(BeNil())
		})

		It("is a no-op for an unknown issue", func() {
			Expect(svc.SoftDelete(ctx, 1)).To(Succeed())
		})
	})

	Describe("Transfer", func() {
		It("carries the funding goal to the new issue and removes the old one", func() {
			old, err := svc.Upsert(ctx, repo, issue)
			Expect(err).NotTo(HaveOccurred())
			_, err = backend.Issues().UpdateFunding(ctx, old.ID, ptr(int64(10000)), ptr("Help fund this"))
			Expect(err).NotTo(HaveOccurred())

			moved, err := svc.Transfer(ctx, 1372046001, other, model.Issue{
				ExternalID:     1372046999,
				Number:         1,
				Title:          "Found a bug",
				State:          model.IssueStateOpen,
				IssueCreatedAt: issue.IssueCreatedAt,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.RepositoryID).To(Equal(other.ID))
			Expect(moved.FundingGoal).To(HaveValue(Equal(int64(10000))))
			Expect(moved.BadgeCustomContent).To(HaveValue(Equal("Help fund this")))

			gone, err := svc.Get(ctx, old.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(gone.DeletedAt).NotTo(BeNil())
		})

		It("stores the new issue when the old one was never seen", func() {
			moved, err := svc.Transfer(ctx, 1, other, issue)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.ExternalID).To(Equal(int64(1372046001)))
			Expect(moved.FundingGoal).To(BeNil())
		})
	})
})
