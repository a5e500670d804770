package model

import "time"

type LLMEvalStage string

const (
	LLMEvalStageClassify LLMEvalStage = "classify"
	LLMEvalStageRoute    LLMEvalStage = "route"
	LLMEvalStageFollowUp LLMEvalStage = "follow_up"
	LLMEvalStageGeneral  LLMEvalStage = "general"
)

// LLMEval records one model call made on behalf of a user for offline review.
type LLMEval struct {
	ID            int64        `json:"id"`
	OrgID         *int64       `json:"org_id,omitempty"`
	UserID        *int64       `json:"user_id,omitempty"`
	RequestID     *int64       `json:"request_id,omitempty"`
	Stage         LLMEvalStage `json:"stage"`
	InputText     string       `json:"input_text"`
	Output        *string      `json:"output,omitempty"`
	Model         string       `json:"model"`
	PromptVersion string       `json:"prompt_version"`
	LatencyMs     int          `json:"latency_ms"`
	Parsed        bool         `json:"parsed"`
	Error         *string      `json:"error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
