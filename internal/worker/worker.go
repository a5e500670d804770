package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/store"
	"go.opentelemetry.io/otel/attribute"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is the pause after a failed read before polling again.
	ErrorBackoff time.Duration
}

// Worker consumes follow-up jobs: it re-reads the request, writes the
// follow-up with the LLM and records it through the lifecycle.
type Worker struct {
	consumer Consumer
	stores   StoreProvider
	writer   FollowUpWriter
	recorder FollowUpRecorder
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, stores StoreProvider, writer FollowUpWriter, recorder FollowUpRecorder, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		stores:    stores,
		writer:    writer,
		recorder:  recorder,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "relay.worker.followup"})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorBackoff):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		msgCtx := logger.WithLogFields(ctx, logger.LogFields{
			MessageID: &msg.ID,
			RequestID: &msg.RequestID,
		})
		_ = w.Handle(msgCtx, msg)
	}

	return nil
}

// Handle processes msg and routes a failure to a retry or the DLQ.
// Exported so it can be reused by the reclaimer.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) error {
	err := w.processMessageSafe(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "message processing failed", "error", err)
		w.handleFailedMessage(ctx, msg, err)
	}
	return err
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fatal(fmt.Errorf("panic: %v", r))
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage handles one follow-up job and acks it on success.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.follow_up")
	defer span.End()
	ctx = span.Context()
	span.SetAttributes(
		attribute.Int64("relay.request_id", msg.RequestID),
		attribute.Int("relay.attempt", msg.Attempt),
	)

	slog.InfoContext(ctx, "processing follow-up",
		"expected_count", msg.ExpectedCount,
		"attempt", msg.Attempt)

	if err := w.followUp(ctx, msg); err != nil {
		span.RecordError(err)
		return err
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will redeliver; the guarded update makes that a no-op.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
	return nil
}

func (w *Worker) followUp(ctx context.Context, msg queue.Message) error {
	req, err := w.stores.Requests().GetByID(ctx, msg.RequestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "request gone, dropping follow-up")
			return nil
		}
		return retryable(fmt.Errorf("getting request: %w", err))
	}

	if req.Status != model.StatusPending || req.FollowUpCount != msg.ExpectedCount || req.ToUserID == nil {
		slog.InfoContext(ctx, "request moved on, dropping follow-up",
			"status", req.Status,
			"follow_up_count", req.FollowUpCount)
		return nil
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{OrgID: &req.OrgID, UserID: &req.FromUserID})

	requester, err := w.stores.Users().GetByID(ctx, req.FromUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fatal(fmt.Errorf("requester %d: %w", req.FromUserID, err))
		}
		return retryable(fmt.Errorf("getting requester: %w", err))
	}

	text, err := w.writer.Generate(ctx, *req, *requester)
	if err != nil {
		if errors.Is(err, llm.ErrProviderUnavailable) {
			return fatal(err)
		}
		return retryable(err)
	}

	recorded, err := w.recorder.RecordFollowUp(ctx, *req, *requester, text)
	if err != nil {
		return retryable(err)
	}
	if !recorded {
		slog.InfoContext(ctx, "follow-up lost to a concurrent change")
		return nil
	}

	slog.InfoContext(ctx, "follow-up sent",
		"assignee_id", *req.ToUserID,
		"follow_up_count", req.FollowUpCount+1,
		"text", logger.Truncate(text, 200))
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if !isRetryable(err) || msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "sending message to DLQ",
			"attempts", msg.Attempt,
			"retryable", isRetryable(err))
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
