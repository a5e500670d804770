package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/store"
)

type SchedulerConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	MaxCount   int
	BatchSize  int32
}

// Scheduler periodically enqueues a follow-up job for every pending request
// that has gone untouched for StaleAfter.
type Scheduler struct {
	requests store.RequestStore
	producer queue.Producer
	cfg      SchedulerConfig
	now      func() time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewScheduler(requests store.RequestStore, producer queue.Producer, cfg SchedulerConfig) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Scheduler{
		requests:  requests,
		producer:  producer,
		cfg:       cfg,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run scans once immediately and then every Interval until stopped.
func (s *Scheduler) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "relay.worker.scheduler"})
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "follow-up scheduler started",
		"interval", s.cfg.Interval,
		"stale_after", s.cfg.StaleAfter,
		"max_count", s.cfg.MaxCount)

	for {
		if n, err := s.ScanOnce(ctx); err != nil {
			slog.ErrorContext(ctx, "follow-up scan failed", "error", err)
		} else if n > 0 {
			slog.InfoContext(ctx, "follow-ups scheduled", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "follow-up scheduler stopping")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}

// ScanOnce enqueues jobs for the current stale requests and returns how many
// were enqueued. A request enqueued twice is harmless: the job carries the
// follow-up count it expects and the worker drops stale jobs.
func (s *Scheduler) ScanOnce(ctx context.Context) (int, error) {
	before := s.now().Add(-s.cfg.StaleAfter)
	stale, err := s.requests.ListStale(ctx, before, s.cfg.MaxCount, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing stale requests: %w", err)
	}

	enqueued := 0
	for _, req := range stale {
		span := logger.StartSpan(ctx, "scheduler.enqueue_follow_up")
		traceID := span.TraceID()
		err := s.producer.Enqueue(span.Context(), queue.FollowUpTask{
			RequestID:     req.ID,
			ExpectedCount: req.FollowUpCount,
			TraceID:       &traceID,
		})
		if err != nil {
			span.RecordError(err)
			span.End()
			return enqueued, fmt.Errorf("enqueue request %d: %w", req.ID, err)
		}
		span.End()
		enqueued++
	}
	return enqueued, nil
}
