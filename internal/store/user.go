package store

import (
	"context"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
)

type userStore struct {
	queries *sqlc.Queries
}

func newUserStore(queries *sqlc.Queries) UserStore {
	return &userStore{queries: queries}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row, err := s.queries.GetUser(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toUserModel(row), nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapErr(err)
	}
	return toUserModel(row), nil
}

func (s *userStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	row, err := s.queries.GetUserByWorkOSID(ctx, &workosID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toUserModel(row), nil
}

func (s *userStore) ListByOrg(ctx context.Context, orgID int64) ([]model.User, error) {
	rows, err := s.queries.ListUsersByOrg(ctx, &orgID)
	if err != nil {
		return nil, err
	}
	return toUserModels(rows), nil
}

func (s *userStore) ListByTeam(ctx context.Context, teamID int64) ([]model.User, error) {
	rows, err := s.queries.ListUsersByTeam(ctx, &teamID)
	if err != nil {
		return nil, err
	}
	return toUserModels(rows), nil
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	row, err := s.queries.CreateUser(ctx, sqlc.CreateUserParams{
		ID:        user.ID,
		OrgID:     user.OrgID,
		TeamID:    user.TeamID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarUrl: user.AvatarURL,
		IsActive:  user.IsActive,
		WorkosID:  user.WorkOSID,
		CreatedAt: ts(nowIfZero(user.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*user = *toUserModel(row)
	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	row, err := s.queries.UpdateUser(ctx, sqlc.UpdateUserParams{
		ID:        user.ID,
		OrgID:     user.OrgID,
		TeamID:    user.TeamID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarUrl: user.AvatarURL,
		IsActive:  user.IsActive,
		WorkosID:  user.WorkOSID,
	})
	if err != nil {
		return mapErr(err)
	}
	*user = *toUserModel(row)
	return nil
}

func toUserModel(row sqlc.User) *model.User {
	return &model.User{
		ID:        row.ID,
		OrgID:     row.OrgID,
		TeamID:    row.TeamID,
		Name:      row.Name,
		Email:     row.Email,
		Role:      row.Role,
		AvatarURL: row.AvatarUrl,
		IsActive:  row.IsActive,
		WorkOSID:  row.WorkosID,
		CreatedAt: row.CreatedAt.Time,
	}
}

func toUserModels(rows []sqlc.User) []model.User {
	users := make([]model.User, len(rows))
	for i, row := range rows {
		users[i] = *toUserModel(row)
	}
	return users
}
