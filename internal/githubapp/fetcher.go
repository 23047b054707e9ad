package githubapp

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v71/github"

	"polar.sh/ghsync/internal/mapper"
	"polar.sh/ghsync/internal/model"
)

const reposPerPage = 100

// Fetcher reads installation data from the REST API.
type Fetcher struct {
	clients ClientFactory
}

func NewFetcher(clients ClientFactory) *Fetcher {
	return &Fetcher{clients: clients}
}

// ListInstallationRepositories walks GET /installation/repositories from page 1
// until a page comes back empty. total_count is ignored since GitHub reports it
// inconsistently across pages.
func (f *Fetcher) ListInstallationRepositories(ctx context.Context, installationID int64) ([]model.Repository, error) {
	client, err := f.clients.Installation(ctx, installationID)
	if err != nil {
		return nil, err
	}

	var repos []model.Repository
	for page := 1; ; page++ {
		result, _, err := client.Apps.ListRepos(ctx, &github.ListOptions{Page: page, PerPage: reposPerPage})
		if err != nil {
			return nil, WrapAPIError("list installation repositories", err)
		}
		if result == nil || len(result.Repositories) == 0 {
			break
		}
		repos = append(repos, mapper.Repositories(result.Repositories)...)
	}

	slog.DebugContext(ctx, "fetched installation repositories",
		"installation_id", installationID,
		"count", len(repos))

	return repos, nil
}

// GetAccountProfile fetches GET /orgs/{login}, or GET /users/{login} for personal accounts.
func (f *Fetcher) GetAccountProfile(ctx context.Context, installationID int64, login string, isPersonal bool) (model.AccountProfile, error) {
	client, err := f.clients.Installation(ctx, installationID)
	if err != nil {
		return model.AccountProfile{}, err
	}

	if isPersonal {
		user, _, err := client.Users.Get(ctx, login)
		if err != nil {
			return model.AccountProfile{}, WrapAPIError("get user", err)
		}
		return mapper.UserProfile(user), nil
	}

	org, _, err := client.Organizations.Get(ctx, login)
	if err != nil {
		return model.AccountProfile{}, WrapAPIError("get organization", err)
	}
	return mapper.OrganizationProfile(org), nil
}
