package worker

import (
	"context"

	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/store"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// StoreProvider mirrors the read side the worker needs. Defined here to avoid import cycles.
type StoreProvider interface {
	Requests() store.RequestStore
	Users() store.UserStore
}

// FollowUpWriter produces the follow-up text for a stale request.
type FollowUpWriter interface {
	Generate(ctx context.Context, req model.Request, from model.User) (string, error)
}

// FollowUpRecorder persists a follow-up and notifies the assignee atomically.
// It returns false when the request changed since it was read.
type FollowUpRecorder interface {
	RecordFollowUp(ctx context.Context, req model.Request, from model.User, text string) (bool, error)
}
