// Package sqlite is the local, single-file database backend.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"agentcomm.app/relay/core/db"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sqlx handle over modernc's pure-Go SQLite driver.
type DB struct {
	db *sqlx.DB
}

// New opens (or creates) the database at dsn. Use ":memory:" for tests.
func New(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// SQLite allows one writer. A single connection serialises transactions
	// and keeps ":memory:" databases from splitting across connections.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	return &DB{db: conn}, nil
}

func withPragmas(dsn string) string {
	// Times are written in the sqlite layout so text comparisons order them.
	pragmas := "_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dsn != ":memory:" {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmas
	}
	return dsn + "?" + pragmas
}

// Migrate applies all pending migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return db.RunMigrations(ctx, d.db.DB, goose.DialectSQLite3, migrations, "migrations")
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Conn returns the handle for non-transactional store access.
func (d *DB) Conn() *sqlx.DB {
	return d.db
}

// WithTx executes fn within a transaction, rolling back if fn fails.
// Only tx may be used inside fn; the pool has a single connection.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
