package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

// listLimit caps the REST listings of requests and tasks.
const listLimit = 100

var (
	ErrInvalidStatus = errors.New("invalid status filter")
	ErrEmptyResponse = errors.New("response is required")
)

// MessageHandler turns one chat message into a reply.
type MessageHandler interface {
	HandleUserMessage(ctx context.Context, user model.User, message string, orgID int64) (*brain.Reply, error)
}

// RequestLifecycle is the subset of the lifecycle manager the API exposes directly.
type RequestLifecycle interface {
	CompleteTask(ctx context.Context, responder model.User, taskID int64, response string) (*brain.Completion, error)
	CancelRequest(ctx context.Context, requester model.User, requestID int64) (*brain.Cancellation, error)
	ListOutgoing(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Request, error)
	ListTasks(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error)
}

type AgentService interface {
	Chat(ctx context.Context, userID int64, message string) (*brain.Reply, error)
	ListRequests(ctx context.Context, userID int64, status string) ([]model.Request, error)
	ListTasks(ctx context.Context, userID int64, status string) ([]model.Task, error)
	CompleteTask(ctx context.Context, userID, taskID int64, response string) (*brain.Completion, error)
	CancelRequest(ctx context.Context, userID, requestID int64) (*brain.Cancellation, error)
}

type agentService struct {
	users     store.UserStore
	handler   MessageHandler
	lifecycle RequestLifecycle
}

func NewAgentService(users store.UserStore, handler MessageHandler, lifecycle RequestLifecycle) AgentService {
	return &agentService{
		users:     users,
		handler:   handler,
		lifecycle: lifecycle,
	}
}

func (s *agentService) Chat(ctx context.Context, userID int64, message string) (*brain.Reply, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrgID == nil {
		return nil, brain.ErrNoOrganization
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &user.ID, OrgID: user.OrgID})

	reply, err := s.handler.HandleUserMessage(ctx, *user, message, *user.OrgID)
	if err != nil {
		slog.ErrorContext(ctx, "agent failed to handle message", "error", err)
		return nil, fmt.Errorf("handling message: %w", err)
	}
	return reply, nil
}

func (s *agentService) ListRequests(ctx context.Context, userID int64, status string) ([]model.Request, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	requests, err := s.lifecycle.ListOutgoing(ctx, userID, filter, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return requests, nil
}

func (s *agentService) ListTasks(ctx context.Context, userID int64, status string) ([]model.Task, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	tasks, err := s.lifecycle.ListTasks(ctx, userID, filter, listLimit)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *agentService) CompleteTask(ctx context.Context, userID, taskID int64, response string) (*brain.Completion, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, ErrEmptyResponse
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &user.ID, TaskID: &taskID})
	return s.lifecycle.CompleteTask(ctx, *user, taskID, response)
}

func (s *agentService) CancelRequest(ctx context.Context, userID, requestID int64) (*brain.Cancellation, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &user.ID, RequestID: &requestID})
	return s.lifecycle.CancelRequest(ctx, *user, requestID)
}

func (s *agentService) loadUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// parseStatusFilter maps an empty filter to nil (all statuses).
func parseStatusFilter(s string) (*model.Status, error) {
	if s == "" {
		return nil, nil
	}
	status := model.Status(strings.ToLower(s))
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return &status, nil
}
