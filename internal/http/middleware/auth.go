package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"github.com/gin-gonic/gin"
)

type contextKey string

const (
	SessionCookieName              = "relay_session"
	userContextKey      contextKey = "user"
	sessionIDContextKey contextKey = "session_id"
)

// Authenticator is the part of the auth service the middleware needs.
type Authenticator interface {
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, error)
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth accepts either a bearer token or a session cookie and puts the
// user on the request context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if token, ok := bearerToken(c); ok {
			user, err := auth.ValidateToken(ctx, token)
			if err != nil {
				abortAuth(c, err, "invalid token")
				return
			}
			setUser(c, user, 0)
			c.Next()
			return
		}

		sessionID, err := getSessionID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		user, err := auth.ValidateSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrUserNotFound) {
				ClearSessionCookie(c, false)
			}
			abortAuth(c, err, "session expired")
			return
		}

		setUser(c, user, sessionID)
		c.Next()
	}
}

func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func GetSessionID(ctx context.Context) int64 {
	sessionID, _ := ctx.Value(sessionIDContextKey).(int64)
	return sessionID
}

func setUser(c *gin.Context, user *model.User, sessionID int64) {
	ctx := context.WithValue(c.Request.Context(), userContextKey, user)
	if sessionID != 0 {
		ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &user.ID, OrgID: user.OrgID})
	c.Request = c.Request.WithContext(ctx)
}

func abortAuth(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAuthNotConfigured):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func getSessionID(c *gin.Context) (int64, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(cookie, 10, 64)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
