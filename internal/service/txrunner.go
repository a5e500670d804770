package service

import (
	"context"

	"agentcomm.app/relay/core/db"
	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/core/db/sqlite"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/store/sqlitestore"
	"github.com/jmoiron/sqlx"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Organizations() store.OrganizationStore
	Teams() store.TeamStore
	Users() store.UserStore
	Sessions() store.SessionStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the postgres DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}

type sqliteTxRunner struct {
	db *sqlite.DB
}

// NewSQLiteTxRunner builds a TxRunner backed by the local sqlite DB.
func NewSQLiteTxRunner(db *sqlite.DB) TxRunner {
	return &sqliteTxRunner{db: db}
}

func (r *sqliteTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(sqlitestore.NewStores(tx))
	})
}
