package brain

import (
	"context"

	"agentcomm.app/relay/core/db"
	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/core/db/sqlite"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/store/sqlitestore"
	"github.com/jmoiron/sqlx"
)

// StoreProvider exposes stores needed by the brain package.
// This is a local interface to avoid import cycles (service → brain, not brain → service).
type StoreProvider interface {
	Users() store.UserStore
	Teams() store.TeamStore
	Requests() store.RequestStore
	Tasks() store.TaskStore
	Notifications() store.NotificationStore
	LLMEvals() store.LLMEvalStore
}

// TxRunner runs functions within a database transaction.
// Inside fn only the provided stores may be used.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

// dbTxRunner implements TxRunner using a db.DB connection.
type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner creates a TxRunner backed by the postgres database.
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

// NewSQLiteTxRunner creates a TxRunner backed by the local sqlite database.
func NewSQLiteTxRunner(db *sqlite.DB) TxRunner {
	return &sqliteTxRunner{db: db}
}

func (r *sqliteTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(sqlitestore.NewStores(tx))
	})
}
