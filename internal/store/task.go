package store

import (
	"context"
	"errors"
	"time"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
	"github.com/jackc/pgx/v5"
)

type taskStore struct {
	queries *sqlc.Queries
}

func newTaskStore(queries *sqlc.Queries) TaskStore {
	return &taskStore{queries: queries}
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	row, err := s.queries.CreateTask(ctx, sqlc.CreateTaskParams{
		ID:          task.ID,
		UserID:      task.UserID,
		RequestID:   task.RequestID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     tsPtr(task.DueDate),
		CreatedAt:   ts(nowIfZero(task.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*task = *toTaskModel(row)
	return nil
}

func (s *taskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row, err := s.queries.GetTask(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return toTaskModel(row), nil
}

func (s *taskStore) ListByUser(ctx context.Context, userID int64, status *model.Status, limit int32) ([]model.Task, error) {
	rows, err := s.queries.ListTasksByUser(ctx, sqlc.ListTasksByUserParams{
		UserID: userID,
		Status: statusPtr(status),
		Lim:    limit,
	})
	if err != nil {
		return nil, err
	}
	return toTaskModels(rows), nil
}

func (s *taskStore) CountByUser(ctx context.Context, userID int64, status *model.Status) (int64, error) {
	return s.queries.CountTasksByUser(ctx, sqlc.CountTasksByUserParams{
		UserID: userID,
		Status: statusPtr(status),
	})
}

// Complete moves a pending task to completed. It returns false when the task
// is missing or no longer pending, which is how concurrent completions lose.
func (s *taskStore) Complete(ctx context.Context, id int64, at time.Time) (bool, *model.Task, error) {
	row, err := s.queries.CompleteTask(ctx, sqlc.CompleteTaskParams{
		ID:          id,
		CompletedAt: ts(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, toTaskModel(row), nil
}

func (s *taskStore) CancelByRequest(ctx context.Context, requestID int64) ([]model.Task, error) {
	rows, err := s.queries.CancelTasksForRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return toTaskModels(rows), nil
}

func toTaskModel(row sqlc.Task) *model.Task {
	return &model.Task{
		ID:          row.ID,
		UserID:      row.UserID,
		RequestID:   row.RequestID,
		Title:       row.Title,
		Description: row.Description,
		Status:      model.Status(row.Status),
		Priority:    model.Priority(row.Priority),
		DueDate:     timePtr(row.DueDate),
		CreatedAt:   row.CreatedAt.Time,
		CompletedAt: timePtr(row.CompletedAt),
	}
}

func toTaskModels(rows []sqlc.Task) []model.Task {
	tasks := make([]model.Task, len(rows))
	for i, row := range rows {
		tasks[i] = *toTaskModel(row)
	}
	return tasks
}
