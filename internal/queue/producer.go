package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, task FollowUpTask) error
	Close() error
}

type ProducerOption func(*redisProducer)

// WithDedupe drops a job when the same request and follow-up count was
// enqueued within ttl. The scheduler rescans every interval, so without it a
// slow worker sees the same stale request once per scan.
func WithDedupe(ttl time.Duration) ProducerOption {
	return func(p *redisProducer) { p.dedupeTTL = ttl }
}

type redisProducer struct {
	client    *redis.Client
	stream    string
	logger    *slog.Logger
	dedupeTTL time.Duration
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger, opts ...ProducerOption) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	p := &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *redisProducer) Enqueue(ctx context.Context, task FollowUpTask) error {
	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	if p.dedupeTTL > 0 && attempt == 1 {
		fresh, err := p.client.SetNX(ctx, dedupeKey(p.stream, task), 1, p.dedupeTTL).Result()
		if err != nil {
			return fmt.Errorf("dedupe follow-up: %w", err)
		}
		if !fresh {
			p.logger.DebugContext(ctx, "follow-up already enqueued", "request_id", task.RequestID, "expected_count", task.ExpectedCount)
			return nil
		}
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: messageValues(Message{
			RequestID:     task.RequestID,
			ExpectedCount: task.ExpectedCount,
			TraceID:       deref(task.TraceID),
		}, attempt),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue follow-up: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued follow-up", "request_id", task.RequestID, "expected_count", task.ExpectedCount, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

// dedupeKey is per request and count: once a follow-up is recorded the count
// moves on and the next one is free to enqueue.
func dedupeKey(stream string, task FollowUpTask) string {
	return fmt.Sprintf("%s:dedupe:%d:%d", stream, task.RequestID, task.ExpectedCount)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
