package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"agentcomm.app/relay/internal/store"
)

var _ = Describe("AuthService", func() {
	var (
		ctx      context.Context
		users    *mockUserStore
		sessions *mockSessionStore
		jwtCfg   config.JWTConfig
		svc      service.AuthService
	)

	newService := func() service.AuthService {
		return service.NewAuthService(users, sessions, &mockTxRunner{}, config.WorkOSConfig{}, jwtCfg)
	}

	BeforeEach(func() {
		ctx = context.Background()
		users = &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				switch id {
				case 10:
					return activeUser(10, int64Ptr(1)), nil
				case 13:
					u := activeUser(13, int64Ptr(1))
					u.IsActive = false
					return u, nil
				}
				return nil, store.ErrNotFound
			},
		}
		sessions = &mockSessionStore{}
		jwtCfg = config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
		svc = newService()
	})

	Describe("bearer tokens", func() {
		It("round-trips a token to its user", func() {
			token, expiresAt, err := svc.IssueToken(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
			Expect(expiresAt).To(BeTemporally("~", time.Now().Add(time.Hour), 5*time.Second))

			user, err := svc.ValidateToken(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(10)))
		})

		It("rejects tokens signed with another secret", func() {
			token, _, err := svc.IssueToken(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			jwtCfg.Secret = "other-secret"
			_, err = newService().ValidateToken(ctx, token)
			Expect(err).To(MatchError(service.ErrInvalidToken))
		})

		It("rejects expired tokens", func() {
			jwtCfg.Expiry = -time.Minute
			token, _, err := newService().IssueToken(ctx, 10)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.ValidateToken(ctx, token)
			Expect(err).To(MatchError(service.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := svc.ValidateToken(ctx, "not-a-jwt")
			Expect(err).To(MatchError(service.ErrInvalidToken))
		})

		It("does not mint tokens for unknown or inactive users", func() {
			_, _, err := svc.IssueToken(ctx, 99)
			Expect(err).To(MatchError(service.ErrUserNotFound))
			_, _, err = svc.IssueToken(ctx, 13)
			Expect(err).To(MatchError(service.ErrUserNotFound))
		})

		It("is unavailable without a secret", func() {
			jwtCfg.Secret = ""
			_, _, err := newService().IssueToken(ctx, 10)
			Expect(err).To(MatchError(service.ErrAuthNotConfigured))
		})
	})

	Describe("sessions", func() {
		It("maps a missing or expired session to ErrSessionExpired", func() {
			_, err := svc.ValidateSession(ctx, 42)
			Expect(err).To(MatchError(service.ErrSessionExpired))
		})

		It("returns the session's user", func() {
			sessions.getValidFn = func(_ context.Context, id int64) (*model.Session, error) {
				return &model.Session{ID: id, UserID: 10, ExpiresAt: time.Now().Add(time.Hour)}, nil
			}
			user, err := svc.ValidateSession(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(10)))
		})

		It("deletes the session on logout", func() {
			var deleted int64
			sessions.deleteFn = func(_ context.Context, id int64) error {
				deleted = id
				return nil
			}
			Expect(svc.Logout(ctx, 42)).To(Succeed())
			Expect(deleted).To(Equal(int64(42)))
		})
	})

	It("refuses hosted login when WorkOS is not configured", func() {
		_, err := svc.GetAuthorizationURL("state")
		Expect(err).To(MatchError(service.ErrAuthNotConfigured))
	})
})
