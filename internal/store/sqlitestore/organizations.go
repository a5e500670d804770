package sqlitestore

import (
	"context"

	"agentcomm.app/relay/internal/model"
	"github.com/jmoiron/sqlx"
)

type organizationStore struct {
	ext sqlx.ExtContext
}

func (s *organizationStore) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	var row organizationRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id); err != nil {
		return nil, mapErr(err)
	}
	return row.model(), nil
}

func (s *organizationStore) Create(ctx context.Context, org *model.Organization) error {
	var row organizationRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO organizations (id, name, slug, created_at) VALUES (?, ?, ?, ?) RETURNING `+organizationColumns,
		org.ID, org.Name, org.Slug, utc(org.CreatedAt))
	if err != nil {
		return err
	}
	*org = *row.model()
	return nil
}

type teamStore struct {
	ext sqlx.ExtContext
}

func (s *teamStore) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	var row teamRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id); err != nil {
		return nil, mapErr(err)
	}
	team := row.model()
	return &team, nil
}

func (s *teamStore) ListByOrg(ctx context.Context, orgID int64) ([]model.Team, error) {
	var rows []teamRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+teamColumns+` FROM teams WHERE org_id = ? ORDER BY name ASC, id ASC`, orgID); err != nil {
		return nil, err
	}
	teams := make([]model.Team, len(rows))
	for i, r := range rows {
		teams[i] = r.model()
	}
	return teams, nil
}

func (s *teamStore) Create(ctx context.Context, team *model.Team) error {
	var row teamRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO teams (id, org_id, name, description, created_at) VALUES (?, ?, ?, ?, ?) RETURNING `+teamColumns,
		team.ID, team.OrgID, team.Name, team.Description, utc(team.CreatedAt))
	if err != nil {
		return err
	}
	*team = row.model()
	return nil
}
