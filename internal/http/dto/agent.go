package dto

import (
	"time"

	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
)

type ChatRequest struct {
	Message string `json:"message" binding:"required,min=1,max=4000"`
}

type ChatResponse struct {
	Reply   string           `json:"reply"`
	Intent  string           `json:"intent"`
	Action  string           `json:"action,omitempty"`
	Request *RequestResponse `json:"request,omitempty"`
}

func ToChatResponse(r *brain.Reply) ChatResponse {
	resp := ChatResponse{
		Reply:  r.Text,
		Intent: string(r.Intent),
		Action: string(r.Action),
	}
	if r.Request != nil {
		req := ToRequestResponse(*r.Request)
		resp.Request = &req
	}
	return resp
}

type RequestResponse struct {
	ID            int64      `json:"id,string"`
	FromUserID    int64      `json:"from_user_id,string"`
	ToUserID      *int64     `json:"to_user_id,omitempty,string"`
	ToTeamID      *int64     `json:"to_team_id,omitempty,string"`
	Subject       string     `json:"subject"`
	Content       string     `json:"content"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	FollowUpCount int        `json:"follow_up_count"`
	Response      *string    `json:"response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func ToRequestResponse(r model.Request) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		FromUserID:    r.FromUserID,
		ToUserID:      r.ToUserID,
		ToTeamID:      r.ToTeamID,
		Subject:       r.Subject,
		Content:       r.Content,
		Status:        string(r.Status),
		Priority:      string(r.Priority),
		DueDate:       r.DueDate,
		FollowUpCount: r.FollowUpCount,
		Response:      r.Response,
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}
}

func ToRequestResponses(reqs []model.Request) []RequestResponse {
	out := make([]RequestResponse, len(reqs))
	for i, r := range reqs {
		out[i] = ToRequestResponse(r)
	}
	return out
}

type TaskResponse struct {
	ID          int64      `json:"id,string"`
	RequestID   int64      `json:"request_id,string"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func ToTaskResponse(t model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		RequestID:   t.RequestID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func ToTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}

type CompleteTaskRequest struct {
	Response string `json:"response" binding:"required,min=1,max=4000"`
}

type CompleteTaskResponse struct {
	Task    TaskResponse    `json:"task"`
	Request RequestResponse `json:"request"`
}

type CancelRequestResponse struct {
	Request        RequestResponse `json:"request"`
	CancelledTasks int             `json:"cancelled_tasks"`
}
