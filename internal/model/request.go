package model

import "time"

// Request is an ask routed from one org member to a user or a team.
// Response is set iff Status is completed.
type Request struct {
	ID            int64      `json:"id"`
	OrgID         int64      `json:"org_id"`
	FromUserID    int64      `json:"from_user_id"`
	ToUserID      *int64     `json:"to_user_id,omitempty"`
	ToTeamID      *int64     `json:"to_team_id,omitempty"`
	Subject       string     `json:"subject"`
	Content       string     `json:"content"`
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	FollowUpCount int        `json:"follow_up_count"`
	LastFollowUp  *time.Time `json:"last_follow_up,omitempty"`
	Response      *string    `json:"response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// LastTouched is when the request was created or last followed up on.
func (r Request) LastTouched() time.Time {
	if r.LastFollowUp != nil {
		return *r.LastFollowUp
	}
	return r.CreatedAt
}

// Task is one user's queue entry for a Request.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	RequestID   int64      `json:"request_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
