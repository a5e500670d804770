package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyResponse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, brain.ErrNoOrganization):
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of an organization"})
	case errors.Is(err, brain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the requester can do that"})
	case errors.Is(err, brain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, brain.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, service.ErrNotificationNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, brain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
