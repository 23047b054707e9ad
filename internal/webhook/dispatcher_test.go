package webhook_test

import (
	"context"
	"time"

	"github.com/google/go-github/v71/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/core/config"
	"polar.sh/ghsync/internal/badge"
	"polar.sh/ghsync/internal/model"
	"polar.sh/ghsync/internal/service"
	"polar.sh/ghsync/internal/store"
	"polar.sh/ghsync/internal/store/memory"
	"polar.sh/ghsync/internal/webhook"
)

const (
	hubbenExternalID   = int64(105373340)
	hubbenInstallation = int64(30560232)
	testingRepoID      = int64(537077294)
	docsRepoID         = int64(537077295)
	issueExternalID    = int64(1372046001)
	movedIssueID       = int64(1372046999)
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		backend    *memory.Backend
		fetcher    *stubFetcher
		embedder   *recordingEmbedder
		dispatcher *webhook.Dispatcher
	)

	dispatch := func(event, name string) error {
		return dispatcher.Dispatch(ctx, load(event, name))
	}

	mustDispatch := func(event, name string) {
		Expect(dispatch(event, name)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		backend = memory.New()
		fetcher = &stubFetcher{}
		embedder = &recordingEmbedder{issues: backend.Issues()}

		services := service.NewServices(service.NewStoreTxRunner(backend), fetcher, nil, "Fund")
		trigger := badge.NewTrigger(config.BadgeConfig{Enabled: true, Label: "Fund"}, embedder)
		handlers := webhook.NewHandlers(services.Organizations(), services.Repositories(), services.Issues(), trigger)
		dispatcher = webhook.NewDispatcher(webhook.NewRegistry(handlers))
	})

	Describe("installation", func() {
		It("stores the organization and its repositories on created", func() {
			mustDispatch("installation", "installation_created")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Name).To(Equal("HubbenCo"))
			Expect(org.IsPersonal).To(BeFalse())
			Expect(org.InstallationID).To(HaveValue(Equal(hubbenInstallation)))
			Expect(org.InstallationPermissions).To(Equal(map[string]string{
				"issues":        "write",
				"metadata":      "read",
				"pull_requests": "read",
			}))

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Name).To(Equal("testing"))
			Expect(repo.IsPrivate).To(BeTrue())
			Expect(repo.OrganizationID).To(Equal(org.ID))
		})

		It("also stores repositories only the API lists", func() {
			fetcher.repos = []model.Repository{
				{ExternalID: testingRepoID, Name: "testing", IsPrivate: true},
				{ExternalID: 600000001, Name: "website"},
			}
			mustDispatch("installation", "installation_created")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			repos, err := backend.Repositories().ListByOrganization(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(HaveLen(2))
		})

		It("replaces permissions on new_permissions_accepted", func() {
			mustDispatch("installation", "installation_created")
			mustDispatch("installation", "installation_new_permissions_accepted")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.InstallationPermissions).To(Equal(map[string]string{
				"issues":        "write",
				"metadata":      "write",
				"pull_requests": "read",
				"members":       "read",
			}))
		})

		It("stores an unknown organization on new_permissions_accepted", func() {
			fetcher.repos = []model.Repository{{ExternalID: testingRepoID, Name: "testing", IsPrivate: true}}
			mustDispatch("installation", "installation_new_permissions_accepted")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Name).To(Equal("HubbenCo"))
			Expect(org.InstallationID).To(HaveValue(Equal(hubbenInstallation)))
			Expect(org.InstallationPermissions).To(Equal(map[string]string{
				"issues":        "write",
				"metadata":      "write",
				"pull_requests": "read",
				"members":       "read",
			}))
			Expect(fetcher.profileLogins).To(Equal([]string{"HubbenCo"}))
			Expect(fetcher.listCalls).To(Equal([]int64{hubbenInstallation}))

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.OrganizationID).To(Equal(org.ID))
		})

		It("records and clears a suspension", func() {
			mustDispatch("installation", "installation_created")
			mustDispatch("installation", "installation_suspend")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.InstallationSuspendedAt).To(HaveValue(BeTemporally("==", time.Date(2022, 10, 1, 10, 0, 0, 0, time.UTC))))
			Expect(org.InstallationSuspendedBy).To(HaveValue(Equal(int64(47952))))

			mustDispatch("installation", "installation_unsuspend")

			org, err = backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.InstallationSuspendedAt).To(BeNil())
		})

		It("soft deletes the organization on deleted", func() {
			mustDispatch("installation", "installation_created")
			mustDispatch("installation", "installation_deleted")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.DeletedAt).NotTo(BeNil())
			Expect(org.InstallationID).To(BeNil())
		})

		It("retries a suspend that arrives before the install", func() {
			err := dispatch("installation", "installation_suspend")
			Expect(err).To(MatchError(service.ErrOrganizationNotFound))
			Expect(service.IsRetryable(err)).To(BeTrue())
		})
	})

	Describe("installation_repositories without a stored organization", func() {
		It("stores the organization and pages the installation repositories", func() {
			fetcher.repos = []model.Repository{
				{ExternalID: testingRepoID, Name: "testing", IsPrivate: true},
				{ExternalID: docsRepoID, Name: "docs"},
			}
			mustDispatch("installation_repositories", "installation_repositories_added")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Name).To(Equal("HubbenCo"))
			Expect(org.InstallationPermissions).To(Equal(map[string]string{
				"issues":        "write",
				"metadata":      "read",
				"pull_requests": "read",
			}))
			Expect(fetcher.profileLogins).To(Equal([]string{"HubbenCo"}))
			Expect(fetcher.listCalls).To(Equal([]int64{hubbenInstallation}))

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, docsRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.OrganizationID).To(Equal(org.ID))
			Expect(repo.DeletedAt).To(BeNil())

			repos, err := backend.Repositories().ListByOrganization(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(HaveLen(2))
		})

		It("refuses an uninstalled organization", func() {
			mustDispatch("installation", "installation_created")
			mustDispatch("installation", "installation_deleted")

			err := dispatch("installation_repositories", "installation_repositories_added")
			Expect(err).To(MatchError(service.ErrOrganizationNotFound))
			Expect(service.IsRetryable(err)).To(BeFalse())
		})
	})

	Describe("installation_repositories", func() {
		BeforeEach(func() {
			mustDispatch("installation", "installation_created")
		})

		It("adds a repository over a removed one with the same name", func() {
			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			_, err = backend.Repositories().Upsert(ctx, &model.Repository{
				ID:             9001,
				Platform:       model.PlatformGitHub,
				ExternalID:     58585,
				OrganizationID: org.ID,
				Name:           "docs",
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = backend.Repositories().SoftDelete(ctx, model.PlatformGitHub, 58585)
			Expect(err).NotTo(HaveOccurred())

			mustDispatch("installation_repositories", "installation_repositories_added")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, docsRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Name).To(Equal("docs"))
			Expect(repo.DeletedAt).To(BeNil())

			old, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, 58585)
			Expect(err).NotTo(HaveOccurred())
			Expect(old.DeletedAt).NotTo(BeNil())
		})

		It("adds repositories", func() {
			mustDispatch("installation_repositories", "installation_repositories_added")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, docsRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Name).To(Equal("docs"))
			Expect(repo.IsPrivate).To(BeFalse())
		})

		It("soft deletes removed repositories", func() {
			mustDispatch("installation_repositories", "installation_repositories_removed")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.DeletedAt).NotTo(BeNil())

			_, err = backend.Repositories().GetByID(ctx, repo.ID, false)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("organization and repository", func() {
		BeforeEach(func() {
			mustDispatch("installation", "installation_created")
		})

		It("renames the organization", func() {
			mustDispatch("organization", "organization_renamed")

			org, err := backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Name).To(Equal("HubbenCo2"))
		})

		It("updates flags from the repository payload", func() {
			mustDispatch("repository", "repository_archived")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.IsArchived).To(BeTrue())
		})

		It("moves a transferred repository over a removed one with the same name", func() {
			dest, err := backend.ExternalOrganizations().Upsert(ctx, &model.ExternalOrganization{
				ID:             9100,
				Platform:       model.PlatformGitHub,
				ExternalID:     47952,
				Name:           "zegl",
				IsPersonal:     true,
				InstallationID: github.Ptr(int64(30560299)),
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = backend.Repositories().Upsert(ctx, &model.Repository{
				ID:             9101,
				Platform:       model.PlatformGitHub,
				ExternalID:     58585,
				OrganizationID: dest.ID,
				Name:           "testing",
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = backend.Repositories().SoftDelete(ctx, model.PlatformGitHub, 58585)
			Expect(err).NotTo(HaveOccurred())

			mustDispatch("repository", "repository_transferred")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.OrganizationID).To(Equal(dest.ID))
			Expect(repo.DeletedAt).To(BeNil())

			live, err := backend.Repositories().GetLiveByName(ctx, dest.ID, "testing")
			Expect(err).NotTo(HaveOccurred())
			Expect(live.ExternalID).To(Equal(testingRepoID))
		})

		It("removes a repository transferred to an unknown account", func() {
			mustDispatch("repository", "repository_transferred")

			repo, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, testingRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.DeletedAt).NotTo(BeNil())
		})
	})

	Describe("issues", func() {
		BeforeEach(func() {
			mustDispatch("installation", "installation_created")
		})

		It("stores an opened issue and embeds the badge once", func() {
			mustDispatch("issues", "issues_opened")

			issue, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(issue.Number).To(Equal(7))
			Expect(issue.Title).To(Equal("Crash when saving a draft"))
			Expect(issue.State).To(Equal(model.IssueStateOpen))
			Expect(issue.HasPledgeBadgeLabel).To(BeTrue())
			Expect(issue.PledgeBadgeCurrentlyEmbedded).To(BeTrue())

			Expect(embedder.embedded).To(HaveLen(1))
			params := embedder.embedded[0]
			Expect(params.TriggeredFromLabel).To(BeTrue())
			Expect(params.Organization.ExternalID).To(Equal(hubbenExternalID))
			Expect(params.Repository.ExternalID).To(Equal(testingRepoID))
			Expect(params.Issue.ExternalID).To(Equal(issueExternalID))
		})

		It("replaces labels in payload order", func() {
			mustDispatch("issues", "issues_opened")
			mustDispatch("issues", "issues_labeled")

			issue, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			names := make([]string, 0, len(issue.Labels))
			for _, l := range issue.Labels {
				names = append(names, l.Name)
			}
			Expect(names).To(Equal([]string{"Fund", "help wanted", "bug"}))
			Expect(issue.Labels[1]).To(Equal(model.Label{
				ID:          4589012350,
				Name:        "help wanted",
				Color:       "008672",
				Description: "Extra attention is needed",
				Default:     true,
			}))
		})

		It("removes the badge when the label is taken off", func() {
			mustDispatch("issues", "issues_opened")
			mustDispatch("issues", "issues_unlabeled")

			Expect(embedder.removed).To(HaveLen(1))
			issue, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(issue.HasPledgeBadgeLabel).To(BeFalse())
			Expect(issue.PledgeBadgeCurrentlyEmbedded).To(BeFalse())
		})

		It("keeps a deleted issue deleted and skips the badge", func() {
			mustDispatch("issues", "issues_opened")
			mustDispatch("issues", "issues_deleted")
			mustDispatch("issues", "issues_opened")

			issue, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(issue.DeletedAt).NotTo(BeNil())
			Expect(embedder.embedded).To(HaveLen(1))
		})

		It("carries the funding goal across a transfer", func() {
			mustDispatch("issues", "issues_opened")
			source, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			goal := int64(10000)
			_, err = backend.Issues().UpdateFunding(ctx, source.ID, &goal, nil)
			Expect(err).NotTo(HaveOccurred())

			mustDispatch("issues", "issues_transferred")

			dest, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, movedIssueID)
			Expect(err).NotTo(HaveOccurred())
			Expect(dest.FundingGoal).To(HaveValue(Equal(int64(10000))))

			docs, err := backend.Repositories().GetByExternalID(ctx, model.PlatformGitHub, docsRepoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(dest.RepositoryID).To(Equal(docs.ID))

			source, err = backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.DeletedAt).NotTo(BeNil())
		})

		It("skips issues in a removed repository", func() {
			mustDispatch("installation_repositories", "installation_repositories_removed")
			mustDispatch("issues", "issues_opened")

			_, err := backend.Issues().GetByExternalID(ctx, model.PlatformGitHub, issueExternalID)
			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(embedder.embedded).To(BeEmpty())
		})
	})

	Describe("issues before the installation", func() {
		It("retries until the organization exists", func() {
			err := dispatch("issues", "issues_opened")
			Expect(err).To(MatchError(service.ErrOrganizationNotFound))
			Expect(service.IsRetryable(err)).To(BeTrue())
		})
	})

	Describe("errors", func() {
		It("rejects unsupported routes", func() {
			d := deliveryFor("issues", []byte(`{"action":"pinned"}`))
			err := dispatcher.Dispatch(ctx, d)
			Expect(err).To(MatchError(webhook.ErrUnsupportedEvent))
			Expect(service.IsRetryable(err)).To(BeFalse())
		})

		It("rejects payloads of the wrong shape", func() {
			d := deliveryFor("issues", []byte(`{"action":"opened","issue":"not an issue"}`))
			err := dispatcher.Dispatch(ctx, d)
			Expect(err).To(MatchError(webhook.ErrUnexpectedPayload))
			Expect(service.IsRetryable(err)).To(BeFalse())
		})

		It("rejects payloads missing the entity", func() {
			d := deliveryFor("installation", []byte(`{"action":"created"}`))
			err := dispatcher.Dispatch(ctx, d)
			Expect(err).To(MatchError(webhook.ErrUnexpectedPayload))

			_, err = backend.ExternalOrganizations().GetByExternalID(ctx, model.PlatformGitHub, hubbenExternalID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})
})
