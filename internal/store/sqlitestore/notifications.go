package sqlitestore

import (
	"context"
	"time"

	"agentcomm.app/relay/internal/model"
	"github.com/jmoiron/sqlx"
)

type notificationStore struct {
	ext sqlx.ExtContext
}

func (s *notificationStore) Create(ctx context.Context, n *model.Notification) error {
	var row notificationRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO notifications (id, user_id, title, body, link, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?) RETURNING `+notificationColumns,
		n.ID, n.UserID, n.Title, n.Body, n.Link, utc(n.CreatedAt))
	if err != nil {
		return err
	}
	*n = row.model()
	return nil
}

func (s *notificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int32) ([]model.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? AND (? = 0 OR is_read = 0)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, unreadOnly, limitArg(limit))
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	res, err := s.ext.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *notificationStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := s.ext.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type sessionStore struct {
	ext sqlx.ExtContext
}

func (s *sessionStore) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	var row sessionRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id); err != nil {
		return nil, mapErr(err)
	}
	return row.model(), nil
}

func (s *sessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	var row sessionRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND expires_at > ?`, id, time.Now().UTC())
	if err != nil {
		return nil, mapErr(err)
	}
	return row.model(), nil
}

func (s *sessionStore) Create(ctx context.Context, session *model.Session) error {
	var row sessionRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO sessions (id, user_id, workos_session_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING `+sessionColumns,
		session.ID, session.UserID, session.WorkOSSessionID, utc(session.CreatedAt), session.ExpiresAt.UTC())
	if err != nil {
		return err
	}
	*session = *row.model()
	return nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	_, err := s.ext.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *sessionStore) DeleteExpired(ctx context.Context) error {
	_, err := s.ext.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

type llmEvalStore struct {
	ext sqlx.ExtContext
}

func (s *llmEvalStore) Create(ctx context.Context, eval *model.LLMEval) error {
	var row llmEvalRow
	err := sqlx.GetContext(ctx, s.ext, &row,
		`INSERT INTO llm_evals (id, org_id, user_id, request_id, stage, input_text, output, model, prompt_version, latency_ms, parsed, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING `+llmEvalColumns,
		eval.ID, eval.OrgID, eval.UserID, eval.RequestID, string(eval.Stage), eval.InputText, eval.Output,
		eval.Model, eval.PromptVersion, eval.LatencyMs, eval.Parsed, eval.Error, utc(eval.CreatedAt))
	if err != nil {
		return err
	}
	*eval = row.model()
	return nil
}

func (s *llmEvalStore) ListByStage(ctx context.Context, stage model.LLMEvalStage, limit int32) ([]model.LLMEval, error) {
	var rows []llmEvalRow
	err := sqlx.SelectContext(ctx, s.ext, &rows,
		`SELECT `+llmEvalColumns+` FROM llm_evals WHERE stage = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		string(stage), limitArg(limit))
	if err != nil {
		return nil, err
	}
	out := make([]model.LLMEval, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}
