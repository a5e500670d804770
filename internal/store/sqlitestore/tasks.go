package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agentcomm.app/relay/internal/model"
	"github.com/jmoiron/sqlx"
)

type taskStore struct {
	ext sqlx.ExtContext
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	var row taskRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO tasks (id, user_id, request_id, title, description, status, priority, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+taskColumns,
		task.ID, task.UserID, task.RequestID, task.Title, task.Description,
		string(task.Status), string(task.Priority), utcPtr(task.DueDate), utc(task.CreatedAt))
	if err != nil {
		return err
	}
	*task = row.model()
	return nil
}

func (s *taskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id); err != nil {
		return nil, mapErr(err)
	}
	task := row.model()
	return &task, nil
}

func (s *taskStore) ListByUser(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error) {
	st := statusArg(status)
	var rows []taskRow
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND (? IS NULL OR status = ?)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, st, st, limitArg(limit))
	if err != nil {
		return nil, err
	}
	return taskModels(rows), nil
}

func (s *taskStore) CountByUser(ctx context.Context, userID int64, status *model.Status) (int64, error) {
	st := statusArg(status)
	var n int64
	err := sqlx.GetContext(ctx, s.ext, &n,
		`SELECT count(*) FROM tasks WHERE user_id = ? AND (? IS NULL OR status = ?)`, userID, st, st)
	return n, err
}

func (s *taskStore) Complete(ctx context.Context, id int64, at time.Time) (bool, *model.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`UPDATE tasks SET status = 'completed', completed_at = ?
		 WHERE id = ? AND status = 'pending' RETURNING `+taskColumns,
		at.UTC(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, err
	}
	task := row.model()
	return true, &task, nil
}

func (s *taskStore) CancelByRequest(ctx context.Context, requestID int64) ([]model.Task, error) {
	var rows []taskRow
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		`UPDATE tasks SET status = 'cancelled'
		 WHERE request_id = ? AND status NOT IN ('completed', 'cancelled') RETURNING `+taskColumns,
		requestID)
	if err != nil {
		return nil, err
	}
	return taskModels(rows), nil
}
