package githubapp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/google/go-github/v71/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"polar.sh/ghsync/internal/githubapp"
)

var _ = Describe("Fetcher", func() {
	var (
		ctx     context.Context
		mux     *http.ServeMux
		server  *httptest.Server
		fetcher *githubapp.Fetcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Fail(fmt.Sprintf("unexpected GitHub API call: %s %s", r.Method, r.URL.String()))
		})
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		client := github.NewClient(nil)
		Expect(githubapp.SetBaseURL(client, server.URL)).To(Succeed())
		fetcher = githubapp.NewFetcher(githubapp.NewStaticClientFactory(client))
	})

	Describe("ListInstallationRepositories", func() {
		It("pages until an empty page regardless of total_count", func() {
			var calls atomic.Int32
			mux.HandleFunc("/installation/repositories", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Query().Get("page") {
				case "1":
					fmt.Fprint(w, `{"total_count":1,"repositories":[{"id":1,"name":"one","private":true}]}`)
				case "2":
					fmt.Fprint(w, `{"total_count":1,"repositories":[{"id":2,"name":"two","private":false,"archived":true}]}`)
				default:
					fmt.Fprint(w, `{"total_count":1,"repositories":[]}`)
				}
			})

			repos, err := fetcher.ListInstallationRepositories(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls.Load()).To(Equal(int32(3)))
			Expect(repos).To(HaveLen(2))
			Expect(repos[0].Name).To(Equal("one"))
			Expect(repos[0].IsPrivate).To(BeTrue())
			Expect(repos[1].IsArchived).To(BeTrue())
		})

		It("marks server errors as retryable", func() {
			mux.HandleFunc("/installation/repositories", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, `{"message":"bad gateway"}`)
			})

			_, err := fetcher.ListInstallationRepositories(ctx, 42)
			Expect(err).To(HaveOccurred())
			Expect(githubapp.IsRetryable(err)).To(BeTrue())

			var apiErr *githubapp.APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
		})
	})

	Describe("GetAccountProfile", func() {
		It("reads /orgs for organizations", func() {
			mux.HandleFunc("/orgs/HubbenCo", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"login":"HubbenCo","name":"Hubben","blog":"https://hubben.co","description":"we build","twitter_username":"hubben"}`)
			})

			profile, err := fetcher.GetAccountProfile(ctx, 42, "HubbenCo", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.PrettyName).To(HaveValue(Equal("Hubben")))
			Expect(profile.Bio).To(HaveValue(Equal("we build")))
			Expect(profile.TwitterUsername).To(HaveValue(Equal("hubben")))
		})

		It("reads /users for personal accounts", func() {
			mux.HandleFunc("/users/zegl", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"login":"zegl","name":"Gustav","bio":"hi"}`)
			})

			profile, err := fetcher.GetAccountProfile(ctx, 42, "zegl", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.PrettyName).To(HaveValue(Equal("Gustav")))
			Expect(profile.Bio).To(HaveValue(Equal("hi")))
		})

		It("does not retry a 404", func() {
			mux.HandleFunc("/orgs/gone", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message":"Not Found"}`)
			})

			_, err := fetcher.GetAccountProfile(ctx, 42, "gone", false)
			Expect(githubapp.IsNotFound(err)).To(BeTrue())
			Expect(githubapp.IsRetryable(err)).To(BeFalse())
		})
	})
})
