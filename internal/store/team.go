package store

import (
	"context"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
)

type teamStore struct {
	queries *sqlc.Queries
}

func newTeamStore(queries *sqlc.Queries) TeamStore {
	return &teamStore{queries: queries}
}

func (s *teamStore) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	row, err := s.queries.GetTeam(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toTeamModel(row), nil
}

func (s *teamStore) ListByOrg(ctx context.Context, orgID int64) ([]model.Team, error) {
	rows, err := s.queries.ListTeamsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	teams := make([]model.Team, len(rows))
	for i, row := range rows {
		teams[i] = *toTeamModel(row)
	}
	return teams, nil
}

func (s *teamStore) Create(ctx context.Context, team *model.Team) error {
	row, err := s.queries.CreateTeam(ctx, sqlc.CreateTeamParams{
		ID:          team.ID,
		OrgID:       team.OrgID,
		Name:        team.Name,
		Description: team.Description,
		CreatedAt:   ts(nowIfZero(team.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*team = *toTeamModel(row)
	return nil
}

func toTeamModel(row sqlc.Team) *model.Team {
	return &model.Team{
		ID:          row.ID,
		OrgID:       row.OrgID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.Time,
	}
}
