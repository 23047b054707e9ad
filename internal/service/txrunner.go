package service

import (
	"context"

	"polar.sh/ghsync/core/db"
	"polar.sh/ghsync/core/db/sqlc"
	"polar.sh/ghsync/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	ExternalOrganizations() store.ExternalOrganizationStore
	Repositories() store.RepositoryStore
	Issues() store.IssueStore
	WebhookDeliveries() store.WebhookDeliveryStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}

type storeTxRunner struct {
	stores StoreProvider
}

// NewStoreTxRunner runs fn directly against stores. Used with the memory
// backend, which has no rollback.
func NewStoreTxRunner(stores StoreProvider) TxRunner {
	return &storeTxRunner{stores: stores}
}

func (r *storeTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return fn(r.stores)
}
