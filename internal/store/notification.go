package store

import (
	"context"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
)

type notificationStore struct {
	queries *sqlc.Queries
}

func newNotificationStore(queries *sqlc.Queries) NotificationStore {
	return &notificationStore{queries: queries}
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	row, err := s.queries.CreateNotification(ctx, sqlc.CreateNotificationParams{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		CreatedAt: ts(nowIfZero(n.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*n = *toNotificationModel(row)
	return nil
}

func (s *notificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int32) ([]model.Notification, error) {
	rows, err := s.queries.ListNotificationsByUser(ctx, sqlc.ListNotificationsByUserParams{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, len(rows))
	for i, row := range rows {
		out[i] = *toNotificationModel(row)
	}
	return out, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	n, err := s.queries.MarkNotificationRead(ctx, sqlc.MarkNotificationReadParams{
		ID:     id,
		UserID: userID,
	})
	return n > 0, err
}

func (s *notificationStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.queries.MarkAllNotificationsRead(ctx, userID)
}

func toNotificationModel(row sqlc.Notification) *model.Notification {
	return &model.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Body:      row.Body,
		Link:      row.Link,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt.Time,
	}
}
