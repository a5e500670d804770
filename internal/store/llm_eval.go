package store

import (
	"context"

	"agentcomm.app/relay/core/db/sqlc"
	"agentcomm.app/relay/internal/model"
)

type llmEvalStore struct {
	queries *sqlc.Queries
}

func newLLMEvalStore(queries *sqlc.Queries) LLMEvalStore {
	return &llmEvalStore{queries: queries}
}

func (s *llmEvalStore) Create(ctx context.Context, eval *model.LLMEval) error {
	row, err := s.queries.InsertLLMEval(ctx, sqlc.InsertLLMEvalParams{
		ID:            eval.ID,
		OrgID:         eval.OrgID,
		UserID:        eval.UserID,
		RequestID:     eval.RequestID,
		Stage:         string(eval.Stage),
		InputText:     eval.InputText,
		Output:        eval.Output,
		Model:         eval.Model,
		PromptVersion: eval.PromptVersion,
		LatencyMs:     int32(eval.LatencyMs),
		Parsed:        eval.Parsed,
		Error:         eval.Error,
		CreatedAt:     ts(nowIfZero(eval.CreatedAt)),
	})
	if err != nil {
		return err
	}
	*eval = *toLLMEvalModel(row)
	return nil
}

func (s *llmEvalStore) ListByStage(ctx context.Context, stage model.LLMEvalStage, limit int32) ([]model.LLMEval, error) {
	rows, err := s.queries.ListLLMEvalsByStage(ctx, sqlc.ListLLMEvalsByStageParams{
		Stage: string(stage),
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	evals := make([]model.LLMEval, len(rows))
	for i, row := range rows {
		evals[i] = *toLLMEvalModel(row)
	}
	return evals, nil
}

func toLLMEvalModel(row sqlc.LlmEval) *model.LLMEval {
	return &model.LLMEval{
		ID:            row.ID,
		OrgID:         row.OrgID,
		UserID:        row.UserID,
		RequestID:     row.RequestID,
		Stage:         model.LLMEvalStage(row.Stage),
		InputText:     row.InputText,
		Output:        row.Output,
		Model:         row.Model,
		PromptVersion: row.PromptVersion,
		LatencyMs:     int(row.LatencyMs),
		Parsed:        row.Parsed,
		Error:         row.Error,
		CreatedAt:     row.CreatedAt.Time,
	}
}
