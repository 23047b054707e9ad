package model

import "time"

// ExternalOrganization mirrors a GitHub organization or personal account that
// installed the app.
type ExternalOrganization struct {
	ID         int64    `json:"id"`
	Platform   Platform `json:"platform"`
	ExternalID int64    `json:"external_id"`
	Name       string   `json:"name"`
	AvatarURL  string   `json:"avatar_url"`
	IsPersonal bool     `json:"is_personal"`

	InstallationID          *int64            `json:"installation_id,omitempty"`
	InstallationCreatedAt   *time.Time        `json:"installation_created_at,omitempty"`
	InstallationUpdatedAt   *time.Time        `json:"installation_updated_at,omitempty"`
	InstallationSuspendedAt *time.Time        `json:"installation_suspended_at,omitempty"`
	InstallationSuspendedBy *int64            `json:"installation_suspended_by,omitempty"`
	InstallationPermissions map[string]string `json:"installation_permissions"`

	// Profile fields backfilled from the REST API; webhooks only carry the minimal account.
	PrettyName      *string `json:"pretty_name,omitempty"`
	Company         *string `json:"company,omitempty"`
	Blog            *string `json:"blog,omitempty"`
	Location        *string `json:"location,omitempty"`
	Email           *string `json:"email,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	TwitterUsername *string `json:"twitter_username,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func (o *ExternalOrganization) IsDeleted() bool {
	return o.DeletedAt != nil
}

func (o *ExternalOrganization) IsSuspended() bool {
	return o.InstallationSuspendedAt != nil
}

// AccountProfile is the subset of a GitHub org/user profile merged into an
// ExternalOrganization.
type AccountProfile struct {
	Login           string
	AvatarURL       string
	PrettyName      *string
	Company         *string
	Blog            *string
	Location        *string
	Email           *string
	Bio             *string
	TwitterUsername *string
}

func (o *ExternalOrganization) ApplyProfile(p AccountProfile) {
	if p.AvatarURL != "" {
		o.AvatarURL = p.AvatarURL
	}
	o.PrettyName = p.PrettyName
	o.Company = p.Company
	o.Blog = p.Blog
	o.Location = p.Location
	o.Email = p.Email
	o.Bio = p.Bio
	o.TwitterUsername = p.TwitterUsername
}
