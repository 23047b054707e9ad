package service

import (
	"log/slog"

	"polar.sh/ghsync/internal/queue"
)

type Services struct {
	txRunner   TxRunner
	fetcher    AccountFetcher
	producer   queue.Producer
	badgeLabel string
}

// NewServices wires the reconciliation services. fetcher and producer may be
// nil in processes that do not need them.
func NewServices(txRunner TxRunner, fetcher AccountFetcher, producer queue.Producer, badgeLabel string) *Services {
	return &Services{
		txRunner:   txRunner,
		fetcher:    fetcher,
		producer:   producer,
		badgeLabel: badgeLabel,
	}
}

func (s *Services) Organizations() OrganizationService {
	return NewOrganizationService(s.txRunner, s.fetcher)
}

func (s *Services) Repositories() RepositoryService {
	return NewRepositoryService(s.txRunner, s.fetcher)
}

func (s *Services) Issues() IssueService {
	return NewIssueService(s.txRunner, s.badgeLabel)
}

func (s *Services) DeliveryIngest() DeliveryIngestService {
	return NewDeliveryIngestService(s.txRunner, s.producer, slog.Default())
}
