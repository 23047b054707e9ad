package store

import (
	"polar.sh/ghsync/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) ExternalOrganizations() ExternalOrganizationStore {
	return newExternalOrganizationStore(s.queries)
}

func (s *Stores) Repositories() RepositoryStore {
	return newRepositoryStore(s.queries)
}

func (s *Stores) Issues() IssueStore {
	return newIssueStore(s.queries)
}

func (s *Stores) WebhookDeliveries() WebhookDeliveryStore {
	return newWebhookDeliveryStore(s.queries)
}
