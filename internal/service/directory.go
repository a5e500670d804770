package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

var (
	ErrTeamNotInOrg = errors.New("team does not belong to the organization")
	ErrInvalidName  = errors.New("name is required")
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// NewMember describes a user added to an organization by an operator.
type NewMember struct {
	OrgID  int64
	TeamID *int64
	Name   string
	Email  string
	Role   *string
}

// DirectoryService manages who exists: organizations, teams and their members.
type DirectoryService interface {
	CreateOrganization(ctx context.Context, name string) (*model.Organization, error)
	CreateTeam(ctx context.Context, orgID int64, name string, description *string) (*model.Team, error)
	AddMember(ctx context.Context, member NewMember) (*model.User, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
}

type directoryService struct {
	users    store.UserStore
	txRunner TxRunner
}

func NewDirectoryService(users store.UserStore, txRunner TxRunner) DirectoryService {
	return &directoryService{users: users, txRunner: txRunner}
}

func (s *directoryService) CreateOrganization(ctx context.Context, name string) (*model.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	org := &model.Organization{
		ID:   id.New(),
		Name: name,
		Slug: slugify(name, "org"),
	}
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		return stores.Organizations().Create(ctx, org)
	})
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	slog.InfoContext(ctx, "organization created", "org_id", org.ID, "slug", org.Slug)
	return org, nil
}

func (s *directoryService) CreateTeam(ctx context.Context, orgID int64, name string, description *string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	team := &model.Team{
		ID:          id.New(),
		OrgID:       orgID,
		Name:        name,
		Description: description,
	}
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Organizations().GetByID(ctx, orgID); err != nil {
			return fmt.Errorf("getting organization: %w", err)
		}
		return stores.Teams().Create(ctx, team)
	})
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}

	slog.InfoContext(ctx, "team created", "org_id", orgID, "team_id", team.ID)
	return team, nil
}

func (s *directoryService) AddMember(ctx context.Context, m NewMember) (*model.User, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	user := &model.User{
		ID:       id.New(),
		OrgID:    &m.OrgID,
		TeamID:   m.TeamID,
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(m.Email)),
		Role:     m.Role,
		IsActive: true,
	}
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Organizations().GetByID(ctx, m.OrgID); err != nil {
			return fmt.Errorf("getting organization: %w", err)
		}
		if m.TeamID != nil {
			team, err := stores.Teams().GetByID(ctx, *m.TeamID)
			if err != nil {
				return fmt.Errorf("getting team: %w", err)
			}
			if team.OrgID != m.OrgID {
				return ErrTeamNotInOrg
			}
		}
		return stores.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}

	slog.InfoContext(ctx, "member added", "org_id", m.OrgID, "user_id", user.ID)
	return user, nil
}

func (s *directoryService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func slugify(s, fallback string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return fallback
	}
	return slug
}
