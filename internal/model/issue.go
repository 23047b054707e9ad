package model

import "time"

type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// Label is stored verbatim from the payload; list order is significant.
type Label struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default"`
}

type Reactions struct {
	TotalCount int `json:"total_count"`
	PlusOne    int `json:"plus_one"`
	MinusOne   int `json:"minus_one"`
	Laugh      int `json:"laugh"`
	Hooray     int `json:"hooray"`
	Confused   int `json:"confused"`
	Heart      int `json:"heart"`
	Rocket     int `json:"rocket"`
	Eyes       int `json:"eyes"`
}

type Issue struct {
	ID             int64      `json:"id"`
	Platform       Platform   `json:"platform"`
	ExternalID     int64      `json:"external_id"`
	OrganizationID int64      `json:"organization_id"`
	RepositoryID   int64      `json:"repository_id"`
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Body           *string    `json:"body,omitempty"`
	Author         *string    `json:"author,omitempty"`
	State          IssueState `json:"state"`
	StateReason    *string    `json:"state_reason,omitempty"`
	Labels         []Label    `json:"labels,omitempty"`
	Assignees      []string   `json:"assignees,omitempty"`
	Comments       int        `json:"comments"`
	Reactions      *Reactions `json:"reactions,omitempty"`

	IssueCreatedAt  time.Time  `json:"issue_created_at"`
	IssueClosedAt   *time.Time `json:"issue_closed_at,omitempty"`
	IssueModifiedAt *time.Time `json:"issue_modified_at,omitempty"`

	HasPledgeBadgeLabel          bool       `json:"has_pledge_badge_label"`
	PledgeBadgeEmbeddedAt        *time.Time `json:"pledge_badge_embedded_at,omitempty"`
	PledgeBadgeCurrentlyEmbedded bool       `json:"pledge_badge_currently_embedded"`
	BadgeCustomContent           *string    `json:"badge_custom_content,omitempty"`
	FundingGoal                  *int64     `json:"funding_goal,omitempty"` // cents

	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func (i *Issue) IsDeleted() bool {
	return i.DeletedAt != nil
}

// ContainsLabel reports whether labels has one named exactly name.
func ContainsLabel(labels []Label, name string) bool {
	for _, l := range labels {
		if l.Name == name {
			return true
		}
	}
	return false
}
