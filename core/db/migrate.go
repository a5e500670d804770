package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending postgres migrations.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.pool)
	defer sqlDB.Close()
	return RunMigrations(ctx, sqlDB, goose.DialectPostgres, migrations, "migrations")
}

// RunMigrations runs goose "up" over fsys/dir. Shared by both backends.
func RunMigrations(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect, fsys embed.FS, dir string) error {
	provider, err := goose.NewProvider(dialect, sqlDB, mustSub(fsys, dir))
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %s: %w", r.Source.Path, r.Error)
		}
	}
	return nil
}

// Pool exposes the pool for health checks.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("migrations dir %q: %v", dir, err))
	}
	return sub
}
