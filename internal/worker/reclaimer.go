package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/queue"
	"github.com/redis/go-redis/v9"
)

type RedisReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
	// MaxPerCycle bounds how many jobs one cycle takes; defaults to 10 batches.
	MaxPerCycle int
}

// RedisReclaimer recovers follow-up jobs left pending by a worker that died
// between XREADGROUP and XACK.
type RedisReclaimer struct {
	client    *redis.Client
	cfg       RedisReclaimerConfig
	consumer  Consumer
	processor queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer Consumer, processor queue.MessageProcessor) *RedisReclaimer {
	return &RedisReclaimer{
		client:    client,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the reclaimer loop. Blocks until Stop() is called.
func (r *RedisReclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "relay.worker.reclaimer",
	})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"stream", r.cfg.Stream,
		"group", r.cfg.Group)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			n, err := r.reclaimOnce(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "reclaim cycle error", "error", err, "claimed", n)
			} else if n > 0 {
				slog.InfoContext(ctx, "reclaim cycle finished", "claimed", n)
			}
		}
	}
}

// Stop signals the reclaimer to stop gracefully.
func (r *RedisReclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// reclaimOnce walks the pending entries list with XAUTOCLAIM, taking
// ownership of follow-up jobs whose consumer went quiet for MinIdle. It stops
// after MaxPerCycle messages so one cycle cannot starve the live consumer.
func (r *RedisReclaimer) reclaimOnce(ctx context.Context) (int, error) {
	cursor := "0-0"
	claimed := 0

	for claimed < r.maxPerCycle() {
		messages, next, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   r.cfg.Stream,
			Group:    r.cfg.Group,
			Consumer: r.cfg.Consumer,
			MinIdle:  r.cfg.MinIdle,
			Start:    cursor,
			Count:    r.cfg.BatchSize,
		}).Result()
		if err != nil {
			return claimed, fmt.Errorf("xautoclaim: %w", err)
		}

		for _, msg := range messages {
			claimed++
			r.handleClaimed(ctx, msg)
		}

		if next == "0-0" || next == "" || len(messages) == 0 {
			break
		}
		cursor = next
	}

	return claimed, nil
}

func (r *RedisReclaimer) maxPerCycle() int {
	if r.cfg.MaxPerCycle > 0 {
		return r.cfg.MaxPerCycle
	}
	return int(r.cfg.BatchSize) * 10
}

// handleClaimed runs one reclaimed job through the same processor as the live
// consumer. The processor owns ack, requeue and dead-lettering, so errors here
// are only logged.
func (r *RedisReclaimer) handleClaimed(ctx context.Context, msg redis.XMessage) {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msgID})

	job, err := queue.ParseMessage(msg)
	if err != nil {
		slog.ErrorContext(ctx, "unparseable follow-up job, dead-lettering", "error", err)
		bad := queue.Message{ID: msg.ID, Raw: msg}
		if err := r.consumer.SendDLQ(ctx, bad, "parse: "+err.Error()); err != nil {
			slog.ErrorContext(ctx, "dead-letter failed, acknowledging", "error", err)
			_ = r.consumer.Ack(ctx, bad)
		}
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{RequestID: &job.RequestID})
	slog.InfoContext(ctx, "reclaimed follow-up job",
		"attempt", job.Attempt,
		"expected_count", job.ExpectedCount)

	start := time.Now()
	if err := r.processor(ctx, job); err != nil {
		slog.WarnContext(ctx, "reclaimed follow-up job failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.InfoContext(ctx, "reclaimed follow-up job processed",
		"duration_ms", time.Since(start).Milliseconds())
}
