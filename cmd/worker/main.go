package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/common/otel"
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/bootstrap"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	slog.InfoContext(ctx, "relay worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Redis.FollowUpGroup,
		"consumer_name", cfg.Redis.FollowUpConsumer)

	// Different node ID than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize relay", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// One job per stale request per scan interval.
	producer := queue.NewRedisProducer(app.Redis, cfg.Redis.FollowUpStream, slog.Default(),
		queue.WithDedupe(cfg.FollowUp.Interval))

	consumer, err := queue.NewRedisConsumer(ctx, app.Redis, queue.ConsumerConfig{
		Stream:       cfg.Redis.FollowUpStream,
		Group:        cfg.Redis.FollowUpGroup,
		Consumer:     cfg.Redis.FollowUpConsumer,
		DLQStream:    cfg.Redis.FollowUpDLQStream,
		BatchSize:    1,
		Block:        5 * time.Second,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	w := worker.New(consumer, app.Backend.Stores, app.FollowUps, app.Lifecycle, worker.Config{
		MaxAttempts: cfg.FollowUp.MaxAttempts,
	})

	scheduler := worker.NewScheduler(app.Backend.Stores.Requests(), producer, worker.SchedulerConfig{
		Interval:   cfg.FollowUp.Interval,
		StaleAfter: cfg.FollowUp.StaleAfter,
		MaxCount:   cfg.FollowUp.MaxCount,
	})

	reclaimer := worker.NewRedisReclaimer(app.Redis, worker.RedisReclaimerConfig{
		Stream:    cfg.Redis.FollowUpStream,
		Group:     cfg.Redis.FollowUpGroup,
		Consumer:  cfg.Redis.FollowUpConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  time.Minute,
		BatchSize: 10,
	}, consumer, w.Handle)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})
	g.Go(func() error {
		reclaimer.Run(gctx)
		return nil
	})

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-gctx.Done():
	}

	slog.InfoContext(ctx, "shutting down worker...")
	cancel()

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 30*time.Second)
	defer cancelShutdown()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-done:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
██████╗ ███████╗██╗      █████╗ ██╗   ██╗   ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██╔══██╗██╔════╝██║     ██╔══██╗╚██╗ ██╔╝   ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██████╔╝█████╗  ██║     ███████║ ╚████╔╝    ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██╔══██╗██╔══╝  ██║     ██╔══██║  ╚██╔╝     ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
██║  ██║███████╗███████╗██║  ██║   ██║      ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝   ╚═╝       ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
