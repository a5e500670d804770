package store

import (
	"context"
	"errors"
	"time"

	"agentcomm.app/relay/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Guarded updates return (false, nil, nil) when the row exists but no longer
// satisfies the expected state. Callers treat that as a lost compare-and-set.

// OrganizationStore defines the contract for organization data access
type OrganizationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	Create(ctx context.Context, org *model.Organization) error
}

// TeamStore defines the contract for team data access
type TeamStore interface {
	GetByID(ctx context.Context, id int64) (*model.Team, error)
	ListByOrg(ctx context.Context, orgID int64) ([]model.Team, error)
	Create(ctx context.Context, team *model.Team) error
}

// UserStore defines the contract for user data access.
// Lists are in listing order: oldest member first, ties broken by id.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error)
	ListByOrg(ctx context.Context, orgID int64) ([]model.User, error)
	ListByTeam(ctx context.Context, teamID int64) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

// RequestStore defines the contract for request data access.
// Lists are newest first. A limit of 0 means no limit.
type RequestStore interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	ListOutgoing(ctx context.Context, fromUserID int64, status *model.Status, limit int32) ([]model.Request, error)
	ListActiveOutgoing(ctx context.Context, fromUserID int64, limit int32) ([]model.Request, error)
	CountActiveOutgoing(ctx context.Context, fromUserID int64) (int64, error)
	Complete(ctx context.Context, id int64, response string, at time.Time) (bool, *model.Request, error)
	Cancel(ctx context.Context, id int64) (bool, *model.Request, error)
	ListStale(ctx context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error)
	RecordFollowUp(ctx context.Context, id int64, expectedCount int, at time.Time) (bool, *model.Request, error)
}

// TaskStore defines the contract for task data access.
// Lists are newest first. A limit of 0 means no limit.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	ListByUser(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error)
	CountByUser(ctx context.Context, userID int64, status *model.Status) (int64, error)
	Complete(ctx context.Context, id int64, at time.Time) (bool, *model.Task, error)
	CancelByRequest(ctx context.Context, requestID int64) ([]model.Task, error)
}

// NotificationStore defines the contract for notification data access
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int32) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) error
}

// LLMEvalStore defines the contract for LLM evaluation records
type LLMEvalStore interface {
	Create(ctx context.Context, eval *model.LLMEval) error
	ListByStage(ctx context.Context, stage model.LLMEvalStage, limit int32) ([]model.LLMEval, error)
}

// Provider is the full set of stores. Both backends implement it, bound
// either to the pool or to a single transaction.
type Provider interface {
	Organizations() OrganizationStore
	Teams() TeamStore
	Users() UserStore
	Requests() RequestStore
	Tasks() TaskStore
	Notifications() NotificationStore
	Sessions() SessionStore
	LLMEvals() LLMEvalStore
}
