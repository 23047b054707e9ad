package mapper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/go-github/v71/github"
	"github.com/samber/lo"

	"polar.sh/ghsync/internal/model"
)

// Organization maps the account an installation belongs to.
// ID is left for the caller to assign.
func Organization(installation *github.Installation) model.ExternalOrganization {
	account := installation.GetAccount()
	installationID := installation.GetID()

	org := model.ExternalOrganization{
		Platform:                model.PlatformGitHub,
		ExternalID:              account.GetID(),
		Name:                    account.GetLogin(),
		AvatarURL:               account.GetAvatarURL(),
		IsPersonal:              IsPersonalAccount(account),
		InstallationID:          &installationID,
		InstallationCreatedAt:   timestamp(installation.CreatedAt),
		InstallationUpdatedAt:   timestamp(installation.UpdatedAt),
		InstallationSuspendedAt: timestamp(installation.SuspendedAt),
		InstallationPermissions: Permissions(installation.GetPermissions()),
	}
	if installation.SuspendedBy != nil {
		by := installation.SuspendedBy.GetID()
		org.InstallationSuspendedBy = &by
	}
	return org
}

func IsPersonalAccount(account *github.User) bool {
	return strings.EqualFold(account.GetType(), "User")
}

// Permissions flattens the typed permission set into permission -> access level.
// Unset permissions are dropped.
func Permissions(perms *github.InstallationPermissions) map[string]string {
	if perms == nil {
		return map[string]string{}
	}
	raw, err := json.Marshal(perms)
	if err != nil {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]string{}
	}
	return out
}

// Repository maps a repository payload. Installation events carry a reduced
// repository object; missing flags map to their zero value.
func Repository(repo *github.Repository) model.Repository {
	return model.Repository{
		Platform:    model.PlatformGitHub,
		ExternalID:  repo.GetID(),
		Name:        repo.GetName(),
		Description: repo.Description,
		IsPrivate:   repo.GetPrivate(),
		IsArchived:  repo.GetArchived(),
	}
}

func Repositories(repos []*github.Repository) []model.Repository {
	return lo.Map(repos, func(r *github.Repository, _ int) model.Repository {
		return Repository(r)
	})
}

func Issue(issue *github.Issue) model.Issue {
	out := model.Issue{
		Platform:        model.PlatformGitHub,
		ExternalID:      issue.GetID(),
		Number:          issue.GetNumber(),
		Title:           issue.GetTitle(),
		Body:            issue.Body,
		State:           model.IssueState(issue.GetState()),
		StateReason:     issue.StateReason,
		Labels:          Labels(issue.Labels),
		Assignees:       Assignees(issue.Assignees),
		Comments:        issue.GetComments(),
		Reactions:       Reactions(issue.Reactions),
		IssueCreatedAt:  issue.GetCreatedAt().Time,
		IssueClosedAt:   timestamp(issue.ClosedAt),
		IssueModifiedAt: timestamp(issue.UpdatedAt),
	}
	if issue.User != nil {
		out.Author = issue.User.Login
	}
	return out
}

// Labels keeps payload order. An empty list maps to nil.
func Labels(labels []*github.Label) []model.Label {
	if len(labels) == 0 {
		return nil
	}
	return lo.Map(labels, func(l *github.Label, _ int) model.Label {
		return model.Label{
			ID:          l.GetID(),
			Name:        l.GetName(),
			Color:       l.GetColor(),
			Description: l.GetDescription(),
			Default:     l.GetDefault(),
		}
	})
}

func Assignees(users []*github.User) []string {
	if len(users) == 0 {
		return nil
	}
	return lo.FilterMap(users, func(u *github.User, _ int) (string, bool) {
		return u.GetLogin(), u.GetLogin() != ""
	})
}

func Reactions(r *github.Reactions) *model.Reactions {
	if r == nil {
		return nil
	}
	return &model.Reactions{
		TotalCount: r.GetTotalCount(),
		PlusOne:    r.GetPlusOne(),
		MinusOne:   r.GetMinusOne(),
		Laugh:      r.GetLaugh(),
		Hooray:     r.GetHooray(),
		Confused:   r.GetConfused(),
		Heart:      r.GetHeart(),
		Rocket:     r.GetRocket(),
		Eyes:       r.GetEyes(),
	}
}

// OrganizationProfile maps GET /orgs/{org}. Organizations have no bio; the description fills it.
func OrganizationProfile(org *github.Organization) model.AccountProfile {
	return model.AccountProfile{
		Login:           org.GetLogin(),
		AvatarURL:       org.GetAvatarURL(),
		PrettyName:      org.Name,
		Company:         org.Company,
		Blog:            org.Blog,
		Location:        org.Location,
		Email:           org.Email,
		Bio:             org.Description,
		TwitterUsername: org.TwitterUsername,
	}
}

// UserProfile maps GET /users/{user}.
func UserProfile(user *github.User) model.AccountProfile {
	return model.AccountProfile{
		Login:           user.GetLogin(),
		AvatarURL:       user.GetAvatarURL(),
		PrettyName:      user.Name,
		Company:         user.Company,
		Blog:            user.Blog,
		Location:        user.Location,
		Email:           user.Email,
		Bio:             user.Bio,
		TwitterUsername: user.TwitterUsername,
	}
}

func timestamp(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
