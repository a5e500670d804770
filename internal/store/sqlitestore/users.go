package sqlitestore

import (
	"context"

	"agentcomm.app/relay/internal/model"
	"github.com/jmoiron/sqlx"
)

type userStore struct {
	ext sqlx.ExtContext
}

func (s *userStore) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+userColumns+` FROM users WHERE `+where, arg); err != nil {
		return nil, mapErr(err)
	}
	user := row.model()
	return &user, nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getOne(ctx, `id = ?`, id)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getOne(ctx, `email = ?`, email)
}

func (s *userStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	return s.getOne(ctx, `workos_id = ?`, workosID)
}

func (s *userStore) ListByOrg(ctx context.Context, orgID int64) ([]model.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+userColumns+` FROM users WHERE org_id = ? ORDER BY created_at ASC, id ASC`, orgID); err != nil {
		return nil, err
	}
	return userModels(rows), nil
}

func (s *userStore) ListByTeam(ctx context.Context, teamID int64) ([]model.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+userColumns+` FROM users WHERE team_id = ? ORDER BY created_at ASC, id ASC`, teamID); err != nil {
		return nil, err
	}
	return userModels(rows), nil
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	var row userRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO users (id, org_id, team_id, name, email, role, avatar_url, is_active, workos_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+userColumns,
		user.ID, user.OrgID, user.TeamID, user.Name, user.Email, user.Role, user.AvatarURL,
		user.IsActive, user.WorkOSID, utc(user.CreatedAt))
	if err != nil {
		return err
	}
	*user = row.model()
	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	var row userRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`UPDATE users SET org_id = ?, team_id = ?, name = ?, email = ?, role = ?, avatar_url = ?, is_active = ?, workos_id = ?
		 WHERE id = ? RETURNING `+userColumns,
		user.OrgID, user.TeamID, user.Name, user.Email, user.Role, user.AvatarURL,
		user.IsActive, user.WorkOSID, user.ID)
	if err != nil {
		return mapErr(err)
	}
	*user = row.model()
	return nil
}
