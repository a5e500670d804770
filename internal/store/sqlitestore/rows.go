package sqlitestore

import (
	"time"

	"agentcomm.app/relay/internal/model"
)

const (
	organizationColumns = `id, name, slug, created_at`
	teamColumns         = `id, org_id, name, description, created_at`
	userColumns         = `id, org_id, team_id, name, email, role, avatar_url, is_active, workos_id, created_at`
	requestColumns      = `id, org_id, from_user_id, to_user_id, to_team_id, subject, content, status, priority, due_date, follow_up_count, last_follow_up, response, created_at, completed_at`
	taskColumns         = `id, user_id, request_id, title, description, status, priority, due_date, created_at, completed_at`
	notificationColumns = `id, user_id, title, body, link, is_read, created_at`
	sessionColumns      = `id, user_id, workos_session_id, created_at, expires_at`
	llmEvalColumns      = `id, org_id, user_id, request_id, stage, input_text, output, model, prompt_version, latency_ms, parsed, error, created_at`
)

type organizationRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

func (r organizationRow) model() *model.Organization {
	return &model.Organization{ID: r.ID, Name: r.Name, Slug: r.Slug, CreatedAt: r.CreatedAt}
}

type teamRow struct {
	ID          int64     `db:"id"`
	OrgID       int64     `db:"org_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r teamRow) model() model.Team {
	return model.Team{ID: r.ID, OrgID: r.OrgID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

type userRow struct {
	ID        int64     `db:"id"`
	OrgID     *int64    `db:"org_id"`
	TeamID    *int64    `db:"team_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      *string   `db:"role"`
	AvatarURL *string   `db:"avatar_url"`
	IsActive  bool      `db:"is_active"`
	WorkOSID  *string   `db:"workos_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) model() model.User {
	return model.User{
		ID:        r.ID,
		OrgID:     r.OrgID,
		TeamID:    r.TeamID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      r.Role,
		AvatarURL: r.AvatarURL,
		IsActive:  r.IsActive,
		WorkOSID:  r.WorkOSID,
		CreatedAt: r.CreatedAt,
	}
}

type requestRow struct {
	ID            int64      `db:"id"`
	OrgID         int64      `db:"org_id"`
	FromUserID    int64      `db:"from_user_id"`
	ToUserID      *int64     `db:"to_user_id"`
	ToTeamID      *int64     `db:"to_team_id"`
	Subject       string     `db:"subject"`
	Content       string     `db:"content"`
	Status        string     `db:"status"`
	Priority      string     `db:"priority"`
	DueDate       *time.Time `db:"due_date"`
	FollowUpCount int        `db:"follow_up_count"`
	LastFollowUp  *time.Time `db:"last_follow_up"`
	Response      *string    `db:"response"`
	CreatedAt     time.Time  `db:"created_at"`
	CompletedAt   *time.Time `db:"completed_at"`
}

func (r requestRow) model() model.Request {
	return model.Request{
		ID:            r.ID,
		OrgID:         r.OrgID,
		FromUserID:    r.FromUserID,
		ToUserID:      r.ToUserID,
		ToTeamID:      r.ToTeamID,
		Subject:       r.Subject,
		Content:       r.Content,
		Status:        model.Status(r.Status),
		Priority:      model.Priority(r.Priority),
		DueDate:       r.DueDate,
		FollowUpCount: r.FollowUpCount,
		LastFollowUp:  r.LastFollowUp,
		Response:      r.Response,
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}
}

type taskRow struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	RequestID   int64      `db:"request_id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	DueDate     *time.Time `db:"due_date"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (r taskRow) model() model.Task {
	return model.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		RequestID:   r.RequestID,
		Title:       r.Title,
		Description: r.Description,
		Status:      model.Status(r.Status),
		Priority:    model.Priority(r.Priority),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

type notificationRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Title     string    `db:"title"`
	Body      *string   `db:"body"`
	Link      *string   `db:"link"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) model() model.Notification {
	return model.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Body:      r.Body,
		Link:      r.Link,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

type sessionRow struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	WorkOSSessionID *string   `db:"workos_session_id"`
	CreatedAt       time.Time `db:"created_at"`
	ExpiresAt       time.Time `db:"expires_at"`
}

func (r sessionRow) model() *model.Session {
	return &model.Session{
		ID:              r.ID,
		UserID:          r.UserID,
		WorkOSSessionID: r.WorkOSSessionID,
		CreatedAt:       r.CreatedAt,
		ExpiresAt:       r.ExpiresAt,
	}
}

type llmEvalRow struct {
	ID            int64     `db:"id"`
	OrgID         *int64    `db:"org_id"`
	UserID        *int64    `db:"user_id"`
	RequestID     *int64    `db:"request_id"`
	Stage         string    `db:"stage"`
	InputText     string    `db:"input_text"`
	Output        *string   `db:"output"`
	Model         string    `db:"model"`
	PromptVersion string    `db:"prompt_version"`
	LatencyMs     int       `db:"latency_ms"`
	Parsed        bool      `db:"parsed"`
	Error         *string   `db:"error"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r llmEvalRow) model() model.LLMEval {
	return model.LLMEval{
		ID:            r.ID,
		OrgID:         r.OrgID,
		UserID:        r.UserID,
		RequestID:     r.RequestID,
		Stage:         model.LLMEvalStage(r.Stage),
		InputText:     r.InputText,
		Output:        r.Output,
		Model:         r.Model,
		PromptVersion: r.PromptVersion,
		LatencyMs:     r.LatencyMs,
		Parsed:        r.Parsed,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
	}
}

func requestModels(rows []requestRow) []model.Request {
	out := make([]model.Request, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out
}

func taskModels(rows []taskRow) []model.Task {
	out := make([]model.Task, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out
}

func userModels(rows []userRow) []model.User {
	out := make([]model.User, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out
}
