package model

import "time"

// Repository is a GitHub repository owned by an ExternalOrganization.
type Repository struct {
	ID             int64      `json:"id"`
	Platform       Platform   `json:"platform"`
	ExternalID     int64      `json:"external_id"`
	OrganizationID int64      `json:"organization_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	IsPrivate      bool       `json:"is_private"`
	IsArchived     bool       `json:"is_archived"`
	CreatedAt      time.Time  `json:"created_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

func (r *Repository) IsDeleted() bool {
	return r.DeletedAt != nil
}
