package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agentcomm.app/relay/internal/model"
	"github.com/jmoiron/sqlx"
)

const activeRequest = `status NOT IN ('completed', 'cancelled')`

type requestStore struct {
	ext sqlx.ExtContext
}

func (s *requestStore) Create(ctx context.Context, req *model.Request) error {
	var row requestRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO requests (id, org_id, from_user_id, to_user_id, to_team_id, subject, content, status, priority, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+requestColumns,
		req.ID, req.OrgID, req.FromUserID, req.ToUserID, req.ToTeamID, req.Subject, req.Content,
		string(req.Status), string(req.Priority), utcPtr(req.DueDate), utc(req.CreatedAt))
	if err != nil {
		return err
	}
	*req = row.model()
	return nil
}

func (s *requestStore) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	var row requestRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id); err != nil {
		return nil, mapErr(err)
	}
	req := row.model()
	return &req, nil
}

func (s *requestStore) ListOutgoing(ctx context.Context, fromUserID int64, status *model.Status, limit int32) ([]model.Request, error) {
	st := statusArg(status)
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE from_user_id = ? AND (? IS NULL OR status = ?)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		fromUserID, st, st, limitArg(limit))
}

func (s *requestStore) ListActiveOutgoing(ctx context.Context, fromUserID int64, limit int32) ([]model.Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE from_user_id = ? AND `+activeRequest+`
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		fromUserID, limitArg(limit))
}

func (s *requestStore) CountActiveOutgoing(ctx context.Context, fromUserID int64) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, s.ext, &n,
		`SELECT count(*) FROM requests WHERE from_user_id = ? AND `+activeRequest, fromUserID)
	return n, err
}

func (s *requestStore) Complete(ctx context.Context, id int64, response string, at time.Time) (bool, *model.Request, error) {
	return s.guarded(ctx,
		`UPDATE requests SET status = 'completed', response = ?, completed_at = ?
		 WHERE id = ? AND `+activeRequest+` RETURNING `+requestColumns,
		response, at.UTC(), id)
}

func (s *requestStore) Cancel(ctx context.Context, id int64) (bool, *model.Request, error) {
	return s.guarded(ctx,
		`UPDATE requests SET status = 'cancelled'
		 WHERE id = ? AND `+activeRequest+` RETURNING `+requestColumns,
		id)
}

func (s *requestStore) ListStale(ctx context.Context, before time.Time, maxFollowUps int, limit int32) ([]model.Request, error) {
	return s.list(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE status = 'pending' AND to_user_id IS NOT NULL
		   AND COALESCE(last_follow_up, created_at) < ? AND follow_up_count < ?
		 ORDER BY created_at ASC, id ASC LIMIT ?`,
		before.UTC(), maxFollowUps, limitArg(limit))
}

func (s *requestStore) RecordFollowUp(ctx context.Context, id int64, expectedCount int, at time.Time) (bool, *model.Request, error) {
	return s.guarded(ctx,
		`UPDATE requests SET follow_up_count = follow_up_count + 1, last_follow_up = ?
		 WHERE id = ? AND follow_up_count = ? AND `+activeRequest+` RETURNING `+requestColumns,
		at.UTC(), id, expectedCount)
}

func (s *requestStore) list(ctx context.Context, query string, args ...any) ([]model.Request, error) {
	var rows []requestRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, err
	}
	return requestModels(rows), nil
}

func (s *requestStore) guarded(ctx context.Context, query string, args ...any) (bool, *model.Request, error) {
	var row requestRow
	if err := sqlx.GetContext(ctx, s.ext, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, err
	}
	req := row.model()
	return true, &req, nil
}
