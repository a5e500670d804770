package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agentcomm.app/relay/internal/model"
	"github.com/redis/go-redis/v9"
)

// notificationStreamMaxLen bounds each user's live stream. The database
// remains the record; the stream only feeds connected clients.
const notificationStreamMaxLen = 500

// NotificationPublisher pushes committed notifications onto per-user streams.
type NotificationPublisher struct {
	client *redis.Client
	prefix string
}

func NewNotificationPublisher(client *redis.Client, prefix string) *NotificationPublisher {
	return &NotificationPublisher{client: client, prefix: prefix}
}

func (p *NotificationPublisher) Publish(ctx context.Context, n model.Notification) error {
	stream := NotificationStreamName(p.prefix, n.UserID)
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: notificationStreamMaxLen,
		Approx: true,
		Values: notificationValues(n),
	}).Err(); err != nil {
		return fmt.Errorf("xadd notification (stream=%s): %w", stream, err)
	}

	slog.DebugContext(ctx, "notification published", "stream", stream, "notification_id", n.ID)
	return nil
}

// NopPublisher drops notifications; used when no redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Notification) error { return nil }

// FeedEvent is one notification read back from a user's stream.
type FeedEvent struct {
	StreamID     string
	Notification model.Notification
}

// NotificationFeed reads a user's live stream for server-sent events.
type NotificationFeed struct {
	client *redis.Client
	prefix string
	block  time.Duration
}

func NewNotificationFeed(client *redis.Client, prefix string, block time.Duration) *NotificationFeed {
	return &NotificationFeed{client: client, prefix: prefix, block: block}
}

// Tail returns the id of the newest event on the user's stream, or "0-0"
// when the stream is empty. Reading from it delivers everything published
// afterwards, unlike "$" which is re-resolved on every call.
func (f *NotificationFeed) Tail(ctx context.Context, userID int64) (string, error) {
	msgs, err := f.client.XRevRangeN(ctx, NotificationStreamName(f.prefix, userID), "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("reading notification stream tail: %w", err)
	}
	return tailID(msgs), nil
}

func tailID(newestFirst []redis.XMessage) string {
	if len(newestFirst) == 0 {
		return "0-0"
	}
	return newestFirst[0].ID
}

// Read blocks until events newer than lastID arrive or the block timeout
// passes. An empty lastID starts from the current tail.
func (f *NotificationFeed) Read(ctx context.Context, userID int64, lastID string) ([]FeedEvent, error) {
	if lastID == "" {
		tail, err := f.Tail(ctx, userID)
		if err != nil {
			return nil, err
		}
		lastID = tail
	}

	streams, err := f.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{NotificationStreamName(f.prefix, userID), lastID},
		Count:   50,
		Block:   f.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading notification stream: %w", err)
	}

	var events []FeedEvent
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			n, err := ParseNotification(msg)
			if err != nil {
				slog.WarnContext(ctx, "skipping malformed notification", "error", err, "stream_id", msg.ID)
				continue
			}
			events = append(events, FeedEvent{StreamID: msg.ID, Notification: n})
		}
	}
	return events, nil
}

func notificationValues(n model.Notification) map[string]any {
	values := map[string]any{
		"id":         n.ID,
		"user_id":    n.UserID,
		"title":      n.Title,
		"created_at": n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if n.Body != nil {
		values["body"] = *n.Body
	}
	if n.Link != nil {
		values["link"] = *n.Link
	}
	return values
}

func ParseNotification(msg redis.XMessage) (model.Notification, error) {
	id, err := parseInt64(msg.Values, "id")
	if err != nil {
		return model.Notification{}, err
	}
	userID, err := parseInt64(msg.Values, "user_id")
	if err != nil {
		return model.Notification{}, err
	}

	n := model.Notification{
		ID:     id,
		UserID: userID,
		Title:  parseOptionalString(msg.Values, "title"),
	}
	if body, ok := msg.Values["body"]; ok {
		s := fmt.Sprint(body)
		n.Body = &s
	}
	if link, ok := msg.Values["link"]; ok {
		s := fmt.Sprint(link)
		n.Link = &s
	}
	if raw := parseOptionalString(msg.Values, "created_at"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return model.Notification{}, fmt.Errorf("parsing created_at: %w", err)
		}
		n.CreatedAt = t
	}
	return n, nil
}
