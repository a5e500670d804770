package worker_test

import (
	"context"
	"sync"
	"time"

	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/store"
)

type mockConsumer struct {
	mu       sync.Mutex
	readFn   func(ctx context.Context) ([]queue.Message, error)
	acked    []string
	requeued []string
	dlq      []string
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return nil, nil
	}
}

func (m *mockConsumer) Ack(_ context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg.ID)
	return nil
}

func (m *mockConsumer) Requeue(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg.ID)
	return nil
}

func (m *mockConsumer) SendDLQ(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlq = append(m.dlq, msg.ID)
	return nil
}

type mockRequestStore struct {
	store.RequestStore
	getByIDFn   func(ctx context.Context, id int64) (*model.Request, error)
	listStaleFn func(ctx context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error)
}

func (m *mockRequestStore) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockRequestStore) ListStale(ctx context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error) {
	if m.listStaleFn != nil {
		return m.listStaleFn(ctx, before, maxFollowUps, limit)
	}
	return nil, nil
}

type mockUserStore struct {
	store.UserStore
	getByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

type mockStores struct {
	requests *mockRequestStore
	users    *mockUserStore
}

func (m *mockStores) Requests() store.RequestStore { return m.requests }
func (m *mockStores) Users() store.UserStore       { return m.users }

type mockWriter struct {
	generateFn func(ctx context.Context, req model.Request, from model.User) (string, error)
	calls      int
}

func (m *mockWriter) Generate(ctx context.Context, req model.Request, from model.User) (string, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, req, from)
	}
	return "Just checking in on this one.", nil
}

type mockRecorder struct {
	recordFn func(ctx context.Context, req model.Request, from model.User, text string) (bool, error)
	calls    int
}

func (m *mockRecorder) RecordFollowUp(ctx context.Context, req model.Request, from model.User, text string) (bool, error) {
	m.calls++
	if m.recordFn != nil {
		return m.recordFn(ctx, req, from, text)
	}
	return true, nil
}

type mockProducer struct {
	enqueueFn func(ctx context.Context, task queue.FollowUpTask) error
	tasks     []queue.FollowUpTask
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.FollowUpTask) error {
	if m.enqueueFn != nil {
		if err := m.enqueueFn(ctx, task); err != nil {
			return err
		}
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockProducer) Close() error { return nil }
