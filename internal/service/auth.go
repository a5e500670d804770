package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/workos/workos-go/v6/pkg/usermanagement"
)

const (
	sessionTTL  = 7 * 24 * time.Hour
	tokenIssuer = "relay"
)

var (
	ErrInvalidCode       = errors.New("invalid authorization code")
	ErrUserNotFound      = errors.New("user not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrInvalidToken      = errors.New("invalid token")
	ErrAuthNotConfigured = errors.New("auth method not configured")
)

type AuthService interface {
	GetAuthorizationURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*model.User, *model.Session, error)
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, error)
	Logout(ctx context.Context, sessionID int64) error

	// IssueToken mints a bearer token for an existing user.
	IssueToken(ctx context.Context, userID int64) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
	txRunner     TxRunner
	workOS       config.WorkOSConfig
	jwt          config.JWTConfig
	now          func() time.Time
}

func NewAuthService(
	userStore store.UserStore,
	sessionStore store.SessionStore,
	txRunner TxRunner,
	workOS config.WorkOSConfig,
	jwtCfg config.JWTConfig,
) AuthService {
	if workOS.Enabled() {
		usermanagement.SetAPIKey(workOS.APIKey)
	}
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		txRunner:     txRunner,
		workOS:       workOS,
		jwt:          jwtCfg,
		now:          time.Now,
	}
}

func (s *authService) GetAuthorizationURL(state string) (string, error) {
	if !s.workOS.Enabled() {
		return "", ErrAuthNotConfigured
	}
	url, err := usermanagement.GetAuthorizationURL(usermanagement.GetAuthorizationURLOpts{
		ClientID:    s.workOS.ClientID,
		RedirectURI: s.workOS.RedirectURI,
		State:       state,
		Provider:    "authkit",
	})
	if err != nil {
		return "", fmt.Errorf("generating authorization URL: %w", err)
	}
	return url.String(), nil
}

func (s *authService) HandleCallback(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if !s.workOS.Enabled() {
		return nil, nil, ErrAuthNotConfigured
	}
	authResponse, err := usermanagement.AuthenticateWithCode(ctx, usermanagement.AuthenticateWithCodeOpts{
		ClientID: s.workOS.ClientID,
		Code:     code,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to authenticate with code", "error", err)
		return nil, nil, ErrInvalidCode
	}

	workosUser := authResponse.User
	var avatarURL *string
	if workosUser.ProfilePictureURL != "" {
		avatarURL = &workosUser.ProfilePictureURL
	}

	var (
		user    *model.User
		session *model.Session
	)
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		var err error
		user, err = linkWorkOSUser(ctx, stores.Users(), workosUser.ID, workosUser.Email, buildUserName(workosUser), avatarURL)
		if err != nil {
			return err
		}

		session = &model.Session{
			ID:        id.New(),
			UserID:    user.ID,
			ExpiresAt: s.now().Add(sessionTTL),
		}
		if err := stores.Sessions().Create(ctx, session); err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to complete login",
			"error", err,
			"email", workosUser.Email,
			"workos_id", workosUser.ID,
		)
		return nil, nil, err
	}

	slog.InfoContext(ctx, "user authenticated",
		"user_id", user.ID,
		"email", user.Email,
		"session_id", session.ID,
	)

	return user, session, nil
}

// linkWorkOSUser finds the user by WorkOS id, then by email (members added
// before their first login), and creates an org-less user otherwise.
func linkWorkOSUser(ctx context.Context, users store.UserStore, workosID, email, name string, avatarURL *string) (*model.User, error) {
	user, err := users.GetByWorkOSID(ctx, workosID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("getting user by workos id: %w", err)
	}
	if user == nil {
		user, err = users.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("getting user by email: %w", err)
		}
	}

	if user == nil {
		user = &model.User{
			ID:        id.New(),
			Name:      name,
			Email:     email,
			AvatarURL: avatarURL,
			WorkOSID:  &workosID,
			IsActive:  true,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
		return user, nil
	}

	user.WorkOSID = &workosID
	if avatarURL != nil {
		user.AvatarURL = avatarURL
	}
	if err := users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

func (s *authService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, error) {
	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return s.activeUser(ctx, session.UserID)
}

func (s *authService) Logout(ctx context.Context, sessionID int64) error {
	if err := s.sessionStore.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *authService) IssueToken(ctx context.Context, userID int64) (string, time.Time, error) {
	if !s.jwt.Enabled() {
		return "", time.Time{}, ErrAuthNotConfigured
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.jwt.Expiry)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *authService) ValidateToken(ctx context.Context, raw string) (*model.User, error) {
	if !s.jwt.Enabled() {
		return nil, ErrAuthNotConfigured
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.jwt.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.DebugContext(ctx, "rejected bearer token", "error", err)
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.activeUser(ctx, userID)
}

func (s *authService) activeUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func buildUserName(user usermanagement.User) string {
	if user.FirstName != "" && user.LastName != "" {
		return user.FirstName + " " + user.LastName
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.LastName != "" {
		return user.LastName
	}
	return user.Email
}
