package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

const notificationBodyLen = 100

// Notification deep links.
const (
	linkTasks    = "/tasks"
	linkRequests = "/requests"
)

// NotificationPublisher pushes committed notifications to live transports.
type NotificationPublisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Lifecycle owns every Request and Task mutation. Each operation runs in one
// transaction; notifications are published only after it commits.
type Lifecycle struct {
	stores    StoreProvider
	txRunner  TxRunner
	publisher NotificationPublisher
	now       func() time.Time
}

func NewLifecycle(stores StoreProvider, txRunner TxRunner, publisher NotificationPublisher) *Lifecycle {
	return &Lifecycle{
		stores:    stores,
		txRunner:  txRunner,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Target names who a request is routed to. When only TeamID is set the
// request goes to the first eligible member of that team.
type Target struct {
	UserID *int64
	TeamID *int64
}

type NewRequest struct {
	OrgID    int64
	From     model.User
	Target   Target
	Subject  string
	Content  string
	Priority model.Priority
	DueDate  *time.Time
}

type RoutedRequest struct {
	Request  model.Request
	Task     model.Task
	Assignee model.User
}

// CreateRoutedRequest persists the request, the assignee's task and their
// notification together.
func (l *Lifecycle) CreateRoutedRequest(ctx context.Context, in NewRequest) (*RoutedRequest, error) {
	priority := in.Priority
	if !priority.IsValid() {
		priority = model.PriorityNormal
	}

	var result RoutedRequest
	var created model.Notification
	err := l.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		assignee, teamID, err := resolveTarget(ctx, stores, in.OrgID, in.From, in.Target)
		if err != nil {
			return err
		}

		now := l.now()
		req := model.Request{
			ID:         id.New(),
			OrgID:      in.OrgID,
			FromUserID: in.From.ID,
			ToUserID:   &assignee.ID,
			ToTeamID:   teamID,
			Subject:    in.Subject,
			Content:    in.Content,
			Status:     model.StatusPending,
			Priority:   priority,
			DueDate:    in.DueDate,
			CreatedAt:  now,
		}
		if err := stores.Requests().Create(ctx, &req); err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		task := model.Task{
			ID:          id.New(),
			UserID:      assignee.ID,
			RequestID:   req.ID,
			Title:       "Request from " + in.From.Name,
			Description: &req.Content,
			Status:      model.StatusPending,
			Priority:    priority,
			DueDate:     in.DueDate,
			CreatedAt:   now,
		}
		if err := stores.Tasks().Create(ctx, &task); err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		created, err = createNotification(ctx, stores, assignee.ID, "Request from "+in.From.Name, req.Content, linkTasks, now)
		if err != nil {
			return err
		}

		result = RoutedRequest{Request: req, Task: task, Assignee: *assignee}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "request created",
		"request_id", result.Request.ID,
		"task_id", result.Task.ID,
		"assignee_id", result.Assignee.ID)

	l.publish(ctx, created)
	return &result, nil
}

// resolveTarget returns the user who will own the task and the team kept as
// provenance. The user must exist, be active, share the requester's org and
// not be the requester. A named user wins over the team; a team that does not
// resolve is then dropped rather than failing the route.
func resolveTarget(ctx context.Context, stores StoreProvider, orgID int64, from model.User, target Target) (*model.User, *int64, error) {
	if target.UserID != nil {
		user, err := stores.Users().GetByID(ctx, *target.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("user %d: %w", *target.UserID, ErrUnresolvedTarget)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("getting user: %w", err)
		}
		if !eligible(*user, orgID, from.ID) {
			return nil, nil, fmt.Errorf("user %d not eligible: %w", user.ID, ErrUnresolvedTarget)
		}

		teamID, err := provenanceTeam(ctx, stores, orgID, target.TeamID)
		if err != nil {
			return nil, nil, err
		}
		return user, teamID, nil
	}

	if target.TeamID == nil {
		return nil, nil, ErrUnresolvedTarget
	}

	team, err := stores.Teams().GetByID(ctx, *target.TeamID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("team %d: %w", *target.TeamID, ErrUnresolvedTarget)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("getting team: %w", err)
	}
	if team.OrgID != orgID {
		return nil, nil, fmt.Errorf("team %d outside org: %w", team.ID, ErrUnresolvedTarget)
	}

	members, err := stores.Users().ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing team members: %w", err)
	}
	for i := range members {
		if eligible(members[i], orgID, from.ID) {
			return &members[i], &team.ID, nil
		}
	}
	return nil, nil, fmt.Errorf("team %d has no eligible member: %w", team.ID, ErrUnresolvedTarget)
}

// provenanceTeam returns teamID when it names a team in the org, else nil.
func provenanceTeam(ctx context.Context, stores StoreProvider, orgID int64, teamID *int64) (*int64, error) {
	if teamID == nil {
		return nil, nil
	}
	team, err := stores.Teams().GetByID(ctx, *teamID)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "routed team not found, keeping user target", "team_id", *teamID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting team: %w", err)
	}
	if team.OrgID != orgID {
		slog.WarnContext(ctx, "routed team outside org, keeping user target", "team_id", team.ID)
		return nil, nil
	}
	return &team.ID, nil
}

func eligible(u model.User, orgID, requesterID int64) bool {
	return u.IsActive && u.InOrg(orgID) && u.ID != requesterID
}

// Completion is the result of a successful CompleteTask. Requester is nil when
// the requesting user no longer exists.
type Completion struct {
	Task      model.Task
	Request   model.Request
	Requester *model.User
}

// CompleteTask completes a pending task owned by responder together with its
// request and notifies the requester. Only one concurrent caller can win; the
// others get ErrInvalidState and nothing is written.
func (l *Lifecycle) CompleteTask(ctx context.Context, responder model.User, taskID int64, response string) (*Completion, error) {
	var result Completion
	var created model.Notification
	err := l.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		task, err := stores.Tasks().GetByID(ctx, taskID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("getting task: %w", err)
		}
		if task.UserID != responder.ID {
			return ErrTaskNotFound
		}
		if task.Status != model.StatusPending {
			return fmt.Errorf("task is %s: %w", task.Status, ErrInvalidState)
		}

		if _, err := stores.Requests().GetByID(ctx, task.RequestID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("getting request: %w", err)
		}

		now := l.now()
		ok, completedTask, err := stores.Tasks().Complete(ctx, task.ID, now)
		if err != nil {
			return fmt.Errorf("completing task: %w", err)
		}
		if !ok {
			return fmt.Errorf("task already completed: %w", ErrInvalidState)
		}

		ok, completedReq, err := stores.Requests().Complete(ctx, task.RequestID, response, now)
		if err != nil {
			return fmt.Errorf("completing request: %w", err)
		}
		if !ok {
			return fmt.Errorf("request already closed: %w", ErrInvalidState)
		}

		result = Completion{Task: *completedTask, Request: *completedReq}

		requester, err := stores.Users().GetByID(ctx, completedReq.FromUserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("getting requester: %w", err)
		}
		result.Requester = requester

		created, err = createNotification(ctx, stores, requester.ID, "Response from "+responder.Name, response, linkRequests, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "task completed",
		"task_id", result.Task.ID,
		"request_id", result.Request.ID)

	l.publish(ctx, created)
	return &result, nil
}

type Cancellation struct {
	Request model.Request
	Tasks   []model.Task
}

// CancelRequest cancels an open request and every open task under it, and
// tells each task owner. Only the requester may cancel.
func (l *Lifecycle) CancelRequest(ctx context.Context, requester model.User, requestID int64) (*Cancellation, error) {
	var result Cancellation
	var created []model.Notification
	err := l.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		req, err := stores.Requests().GetByID(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("getting request: %w", err)
		}
		if req.FromUserID != requester.ID {
			return ErrNotOwner
		}

		ok, cancelled, err := stores.Requests().Cancel(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("cancelling request: %w", err)
		}
		if !ok {
			return fmt.Errorf("request is %s: %w", req.Status, ErrInvalidState)
		}

		tasks, err := stores.Tasks().CancelByRequest(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("cancelling tasks: %w", err)
		}

		now := l.now()
		for _, t := range tasks {
			n, err := createNotification(ctx, stores, t.UserID, "Request cancelled by "+requester.Name, req.Subject, linkTasks, now)
			if err != nil {
				return err
			}
			created = append(created, n)
		}

		result = Cancellation{Request: *cancelled, Tasks: tasks}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "request cancelled",
		"request_id", result.Request.ID,
		"cancelled_tasks", len(result.Tasks))

	for _, n := range created {
		l.publish(ctx, n)
	}
	return &result, nil
}

// RecordFollowUp bumps the request's follow-up count and notifies the
// assignee. It returns false when the request was closed or followed up by
// someone else since req was read.
func (l *Lifecycle) RecordFollowUp(ctx context.Context, req model.Request, from model.User, text string) (bool, error) {
	if req.ToUserID == nil {
		return false, nil
	}

	var recorded bool
	var created model.Notification
	err := l.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		now := l.now()
		ok, _, err := stores.Requests().RecordFollowUp(ctx, req.ID, req.FollowUpCount, now)
		if err != nil {
			return fmt.Errorf("recording follow-up: %w", err)
		}
		if !ok {
			return nil
		}
		recorded = true

		created, err = createNotification(ctx, stores, *req.ToUserID, "Follow-up from "+from.Name, text, linkTasks, now)
		return err
	})
	if err != nil {
		return false, err
	}
	if !recorded {
		return false, nil
	}

	l.publish(ctx, created)
	return true, nil
}

// ListOutgoing returns requests sent by userID, newest first. A zero limit
// returns all of them.
func (l *Lifecycle) ListOutgoing(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Request, error) {
	return l.stores.Requests().ListOutgoing(ctx, userID, status, limit)
}

// ListTasks returns tasks owned by userID, newest first.
func (l *Lifecycle) ListTasks(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error) {
	return l.stores.Tasks().ListByUser(ctx, userID, status, limit)
}

func createNotification(ctx context.Context, stores StoreProvider, userID int64, title, body, link string, now time.Time) (model.Notification, error) {
	body = clip(body, notificationBodyLen)
	n := model.Notification{
		ID:        id.New(),
		UserID:    userID,
		Title:     title,
		Body:      &body,
		Link:      &link,
		CreatedAt: now,
	}
	if err := stores.Notifications().Create(ctx, &n); err != nil {
		return model.Notification{}, fmt.Errorf("creating notification: %w", err)
	}
	return n, nil
}

// publish is best-effort: the stored notification is the source of truth.
func (l *Lifecycle) publish(ctx context.Context, n model.Notification) {
	if l.publisher == nil || n.ID == 0 {
		return
	}
	if err := l.publisher.Publish(ctx, n); err != nil {
		slog.WarnContext(ctx, "failed to publish notification",
			"error", err,
			"notification_id", n.ID,
			"recipient_id", n.UserID)
	}
}
