package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

const notificationListLimit = 50

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	List(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type notificationService struct {
	notifications store.NotificationStore
}

func NewNotificationService(notifications store.NotificationStore) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) List(ctx context.Context, userID int64, unreadOnly bool) ([]model.Notification, error) {
	items, err := s.notifications.ListByUser(ctx, userID, unreadOnly, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return items, nil
}

// MarkRead only touches notifications owned by userID; anything else is not found.
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	ok, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	slog.DebugContext(ctx, "notifications marked read", "user_id", userID, "count", n)
	return n, nil
}
