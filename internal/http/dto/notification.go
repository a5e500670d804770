package dto

import (
	"time"

	"agentcomm.app/relay/internal/model"
)

type NotificationResponse struct {
	ID        int64     `json:"id,string"`
	Title     string    `json:"title"`
	Body      *string   `json:"body,omitempty"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func ToNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationResponses(items []model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(items))
	for i, n := range items {
		out[i] = ToNotificationResponse(n)
	}
	return out
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
