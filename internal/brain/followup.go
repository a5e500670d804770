package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/internal/model"
)

var errEmptyFollowUp = errors.New("generating follow-up: empty reply")

// FollowUpGenerator writes the nudge sent to the assignee of a stale request.
type FollowUpGenerator struct {
	llm   llm.Client
	evals *EvalRecorder
	now   func() time.Time
}

func NewFollowUpGenerator(client llm.Client, evals *EvalRecorder) *FollowUpGenerator {
	return &FollowUpGenerator{llm: client, evals: evals, now: time.Now}
}

// Generate returns the follow-up text. Gateway errors are returned unchanged
// so the caller can decide whether to retry.
func (g *FollowUpGenerator) Generate(ctx context.Context, req model.Request, from model.User) (string, error) {
	prompt := buildFollowUpPrompt(req, from, g.now())

	start := time.Now()
	text, err := g.llm.Chat(ctx, llm.UserMessage(prompt), followUpSystemPrompt, llm.WithMaxTokens(512))
	g.evals.record(ctx, evalCall{
		stage: model.LLMEvalStageFollowUp, promptVersion: followUpPromptVersion,
		input: prompt, output: text, err: err, parsed: err == nil, latency: time.Since(start),
	})
	if err != nil {
		return "", fmt.Errorf("generating follow-up: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyFollowUp
	}
	return text, nil
}

func buildFollowUpPrompt(req model.Request, from model.User, now time.Time) string {
	daysWaiting := int(now.Sub(req.CreatedAt).Hours() / 24)
	if daysWaiting < 0 {
		daysWaiting = 0
	}

	var sb strings.Builder
	sb.WriteString("Generate a follow-up for this pending request:\n\n")
	fmt.Fprintf(&sb, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&sb, "Original request: %s\n", req.Content)
	fmt.Fprintf(&sb, "Days waiting: %d\n", daysWaiting)
	fmt.Fprintf(&sb, "Previous follow-ups: %d\n\n", req.FollowUpCount)
	fmt.Fprintf(&sb, "From: %s", from.Name)
	return sb.String()
}
