package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"agentcomm.app/relay/internal/http/dto"
	"agentcomm.app/relay/internal/http/middleware"
	"agentcomm.app/relay/internal/queue"
	"agentcomm.app/relay/internal/service"
	"github.com/gin-gonic/gin"
)

// NotificationFeed reads a user's live notification stream.
type NotificationFeed interface {
	Tail(ctx context.Context, userID int64) (string, error)
	Read(ctx context.Context, userID int64, lastID string) ([]queue.FeedEvent, error)
}

type NotificationHandler struct {
	notificationService service.NotificationService
	feed                NotificationFeed
}

// NewNotificationHandler builds the handler. feed may be nil when no redis is
// configured; the stream endpoint then answers 503.
func NewNotificationHandler(notificationService service.NotificationService, feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, feed: feed}
}

func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	user := middleware.GetUser(c.Request.Context())
	items, err := h.notificationService.List(c.Request.Context(), user.ID, unreadOnly)
	if err != nil {
		writeError(c, err, "failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationResponses(items))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user := middleware.GetUser(c.Request.Context())
	if err := h.notificationService.MarkRead(c.Request.Context(), user.ID, notificationID); err != nil {
		writeError(c, err, "failed to mark notification read")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.GetUser(c.Request.Context())
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err, "failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, dto.MarkAllReadResponse{Updated: n})
}

// Stream relays the user's live notifications as server-sent events.
func (h *NotificationHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications not configured"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	user := middleware.GetUser(ctx)
	lastID := c.GetHeader("Last-Event-ID")
	if lastID == "" {
		lastID = c.Query("last_id")
	}
	if lastID == "" {
		tail, err := h.feed.Tail(ctx, user.ID)
		if err != nil {
			slog.WarnContext(ctx, "notification stream tail failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stream unavailable"})
			return
		}
		lastID = tail
	}

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	sseWrite(c.Writer, "", "ping", "ready")
	flusher.Flush()

	for {
		if ctx.Err() != nil {
			return
		}

		events, err := h.feed.Read(ctx, user.ID, lastID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.WarnContext(ctx, "notification stream read failed", "error", err)
			sseWrite(c.Writer, "", "error", map[string]string{"error": "stream unavailable"})
			flusher.Flush()
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if len(events) == 0 {
			sseWrite(c.Writer, "", "ping", time.Now().UTC().Format(time.RFC3339Nano))
			flusher.Flush()
			continue
		}

		for _, ev := range events {
			lastID = ev.StreamID
			sseWrite(c.Writer, ev.StreamID, "notification", dto.ToNotificationResponse(ev.Notification))
		}
		flusher.Flush()
	}
}
