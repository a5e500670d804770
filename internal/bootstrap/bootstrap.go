// Package bootstrap assembles relay's dependencies from config. Every binary
// (server, worker, relayctl, mcp) builds its graph through here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/core/db"
	"agentcomm.app/relay/core/db/sqlite"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
	"agentcomm.app/relay/internal/store/sqlitestore"
	"github.com/redis/go-redis/v9"
)

// Backend is one opened database with stores and tx runners bound to it.
type Backend struct {
	Stores    store.Provider
	BrainTx   brain.TxRunner
	ServiceTx service.TxRunner

	migrate func(ctx context.Context) error
	ping    func(ctx context.Context) error
	close   func()
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Migrate applies pending migrations for the configured driver.
func (b *Backend) Migrate(ctx context.Context) error {
	return b.migrate(ctx)
}

func (b *Backend) Close() {
	b.close()
}

// OpenBackend connects to postgres or sqlite per cfg.DB.Driver. SQLite is
// migrated on open since it is usually a fresh local file.
func OpenBackend(ctx context.Context, cfg config.DBConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.New(ctx, db.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{
			Stores:    store.NewStores(database.Queries()),
			BrainTx:   brain.NewTxRunner(database),
			ServiceTx: service.NewTxRunner(database),
			migrate:   database.Migrate,
			ping:      database.Ping,
			close:     database.Close,
		}, nil

	case config.DriverSQLite, "":
		database, err := sqlite.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrating sqlite: %w", err)
		}
		return &Backend{
			Stores:    sqlitestore.NewStores(database.Conn()),
			BrainTx:   brain.NewSQLiteTxRunner(database),
			ServiceTx: service.NewSQLiteTxRunner(database),
			migrate:   database.Migrate,
			ping:      database.Ping,
			close:     func() { _ = database.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenRedis parses url and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// App is the wired core: the brain plus the services the transports call.
type App struct {
	Backend   *Backend
	Redis     *redis.Client
	LLM       llm.Client
	Evals     *brain.EvalRecorder
	Lifecycle *brain.Lifecycle
	Agent     *brain.Agent
	FollowUps *brain.FollowUpGenerator
	Services  *service.Services
}

// New opens the backend, and redis when configured, and wires the brain.
// Without redis, notifications are only persisted.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	backend, err := OpenBackend(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	slog.InfoContext(ctx, "database connected", "driver", cfg.DB.Driver)

	client, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.LLM.MaxAttempts,
	})
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	if !cfg.LLM.Enabled() {
		slog.WarnContext(ctx, "no llm api key configured, agent will answer with fallbacks", "provider", cfg.LLM.Provider)
	}

	app := &App{Backend: backend, LLM: client}

	var publisher brain.NotificationPublisher = queue.NopPublisher{}
	if cfg.Redis.Enabled() {
		app.Redis, err = OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			backend.Close()
			return nil, err
		}
		publisher = queue.NewNotificationPublisher(app.Redis, cfg.Redis.NotificationStreamPrefix)
		slog.InfoContext(ctx, "redis connected", "notification_prefix", cfg.Redis.NotificationStreamPrefix)
	}

	app.Evals = brain.NewEvalRecorder(backend.Stores.LLMEvals(), client.Model())
	app.Lifecycle = brain.NewLifecycle(backend.Stores, backend.BrainTx, publisher)
	app.Agent = brain.NewAgent(backend.Stores, client, app.Lifecycle, app.Evals)
	app.FollowUps = brain.NewFollowUpGenerator(client, app.Evals)
	app.Services = service.NewServices(backend.Stores, backend.ServiceTx, app.Agent, app.Lifecycle, cfg)

	return app, nil
}

// Health pings the database and, when configured, redis.
func (a *App) Health(ctx context.Context) error {
	if err := a.Backend.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Backend.Close()
}
