package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const baseBackoff = 500 * time.Millisecond

type resilientClient struct {
	next        Client
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
}

// WithResilience bounds every call by timeout and retries retryable failures
// up to maxAttempts in total, backing off exponentially from 500ms. An attempt
// that hits its own timeout is retried while the caller's context is live.
func WithResilience(next Client, timeout time.Duration, maxAttempts int) Client {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &resilientClient{
		next:        next,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     baseBackoff,
	}
}

func (c *resilientClient) Chat(ctx context.Context, messages []Message, systemPrompt string, opts ...ChatOption) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.attempt(ctx, messages, systemPrompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == c.maxAttempts || !(IsRetryable(ctx, err) || attemptTimedOut(ctx, err)) {
			break
		}

		wait := c.backoff * time.Duration(1<<(attempt-1))
		slog.InfoContext(ctx, "retrying llm call",
			"model", c.next.Model(),
			"attempt", attempt,
			"backoff_ms", wait.Milliseconds())

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func (c *resilientClient) attempt(ctx context.Context, messages []Message, systemPrompt string, opts []ChatOption) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.next.Chat(ctx, messages, systemPrompt, opts...)
}

// attemptTimedOut reports whether err is the per-attempt deadline rather than
// the caller's.
func attemptTimedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

func (c *resilientClient) Model() string {
	return c.next.Model()
}
