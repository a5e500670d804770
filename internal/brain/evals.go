package brain

import (
	"context"
	"log/slog"
	"time"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

// evalCall is one model call as recorded in llm_evals.
type evalCall struct {
	stage         model.LLMEvalStage
	promptVersion string
	input         string
	output        string
	err           error
	parsed        bool
	latency       time.Duration
}

// EvalRecorder logs model calls for offline review. A nil recorder is a no-op.
type EvalRecorder struct {
	store store.LLMEvalStore
	model string
}

func NewEvalRecorder(evals store.LLMEvalStore, model string) *EvalRecorder {
	if evals == nil {
		return nil
	}
	return &EvalRecorder{store: evals, model: model}
}

// record is best-effort: failures are logged and never reach the user flow.
// Org, user and request ids come from the context log fields.
func (r *EvalRecorder) record(ctx context.Context, call evalCall) {
	if r == nil {
		return
	}

	fields := logger.GetLogFields(ctx)
	eval := &model.LLMEval{
		ID:            id.New(),
		OrgID:         fields.OrgID,
		UserID:        fields.UserID,
		RequestID:     fields.RequestID,
		Stage:         call.stage,
		InputText:     call.input,
		Model:         r.model,
		PromptVersion: call.promptVersion,
		LatencyMs:     int(call.latency.Milliseconds()),
		Parsed:        call.parsed,
	}
	if call.output != "" {
		eval.Output = &call.output
	}
	if call.err != nil {
		msg := call.err.Error()
		eval.Error = &msg
	}

	if err := r.store.Create(ctx, eval); err != nil {
		slog.WarnContext(ctx, "failed to log llm eval", "error", err, "stage", call.stage)
	}
}
