package mapper_test

import (
	"time"

	"github.com/google/go-github/v71/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/mapper"
	"polar.sh/ghsync/internal/model"
)

var _ = Describe("GitHub mapper", func() {
	Describe("Organization", func() {
		It("maps the installation account and permissions", func() {
			created := github.Timestamp{Time: time.Date(2022, 10, 13, 9, 0, 0, 0, time.UTC)}
			org := mapper.Organization(&github.Installation{
				ID: github.Ptr(int64(30560232)),
				Account: &github.User{
					ID:        github.Ptr(int64(105373340)),
					Login:     github.Ptr("HubbenCo"),
					AvatarURL: github.Ptr("https://avatars.githubusercontent.com/u/105373340?v=4"),
					Type:      github.Ptr("Organization"),
				},
				CreatedAt: &created,
				Permissions: &github.InstallationPermissions{
					Issues:   github.Ptr("write"),
					Metadata: github.Ptr("read"),
				},
			})

			Expect(org.Platform).To(Equal(model.PlatformGitHub))
			Expect(org.ExternalID).To(Equal(int64(105373340)))
			Expect(org.Name).To(Equal("HubbenCo"))
			Expect(org.IsPersonal).To(BeFalse())
			Expect(org.InstallationID).To(HaveValue(Equal(int64(30560232))))
			Expect(org.InstallationCreatedAt).To(HaveValue(Equal(created.Time)))
			Expect(org.InstallationPermissions).To(Equal(map[string]string{
				"issues":   "write",
				"metadata": "read",
			}))
		})

		It("flags user accounts as personal", func() {
			Expect(mapper.IsPersonalAccount(&github.User{Type: github.Ptr("User")})).To(BeTrue())
		})
	})

	Describe("Labels", func() {
		It("keeps payload order", func() {
			labels := mapper.Labels([]*github.Label{
				{ID: github.Ptr(int64(2)), Name: github.Ptr("zeta")},
				{ID: github.Ptr(int64(1)), Name: github.Ptr("Fund"), Color: github.Ptr("ededed")},
			})
			Expect(labels).To(Equal([]model.Label{
				{ID: 2, Name: "zeta"},
				{ID: 1, Name: "Fund", Color: "ededed"},
			}))
		})

		It("maps an empty list to nil", func() {
			Expect(mapper.Labels([]*github.Label{})).To(BeNil())
		})
	})

	Describe("Issue", func() {
		It("maps the author and state", func() {
			issue := mapper.Issue(&github.Issue{
				ID:     github.Ptr(int64(1430434342)),
				Number: github.Ptr(3),
				Title:  github.Ptr("Something broke"),
				State:  github.Ptr("open"),
				User:   &github.User{Login: github.Ptr("zegl")},
				Assignees: []*github.User{
					{Login: github.Ptr("birkjernstrom")},
				},
			})
			Expect(issue.ExternalID).To(Equal(int64(1430434342)))
			Expect(issue.Number).To(Equal(3))
			Expect(issue.State).To(Equal(model.IssueStateOpen))
			Expect(issue.Author).To(HaveValue(Equal("zegl")))
			Expect(issue.Assignees).To(Equal([]string{"birkjernstrom"}))
			Expect(issue.Labels).To(BeNil())
		})
	})
})
