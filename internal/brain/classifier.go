package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"github.com/tidwall/gjson"
)

// ClassificationResponse is the JSON shape the classifier asks for.
type ClassificationResponse struct {
	Intent     string `json:"intent" jsonschema:"enum=request,enum=status,enum=tasks,enum=respond,enum=general" jsonschema_description:"Classified intent of the message"`
	TaskNumber *int   `json:"task_number" jsonschema_description:"1-based task index when responding to a specific task, otherwise null"`
	Details    string `json:"details" jsonschema_description:"Any relevant details"`
}

var classificationSchema = llm.GenerateSchema[ClassificationResponse]()

type Classifier struct {
	llm   llm.Client
	evals *EvalRecorder
}

func NewClassifier(client llm.Client, evals *EvalRecorder) *Classifier {
	return &Classifier{llm: client, evals: evals}
}

// Classify never fails. Gateway errors and malformed replies degrade to
// IntentGeneral with a note in Details.
func (c *Classifier) Classify(ctx context.Context, message string, workload WorkloadContext) IntentResult {
	prompt := buildClassifierPrompt(message, workload)

	start := time.Now()
	reply, err := c.llm.Chat(ctx, llm.UserMessage(prompt), classifierSystemPrompt,
		llm.WithJSONSchema("intent_classification", classificationSchema),
		llm.WithTemperature(0),
		llm.WithMaxTokens(256),
	)
	latency := time.Since(start)

	if err != nil {
		c.evals.record(ctx, evalCall{
			stage: model.LLMEvalStageClassify, promptVersion: classifierPromptVersion,
			input: prompt, err: err, latency: latency,
		})
		if errors.Is(err, llm.ErrProviderUnavailable) {
			slog.WarnContext(ctx, "classifier: no llm provider configured")
			return generalFallback("No AI provider configured")
		}
		slog.WarnContext(ctx, "classifier: llm call failed, defaulting to general", "error", err)
		return generalFallback("Classification unavailable")
	}

	result, ok := parseClassification(reply)
	c.evals.record(ctx, evalCall{
		stage: model.LLMEvalStageClassify, promptVersion: classifierPromptVersion,
		input: prompt, output: reply, parsed: ok, latency: latency,
	})
	if !ok {
		slog.WarnContext(ctx, "classifier: unparseable reply, defaulting to general",
			"reply", logger.Truncate(reply, 200))
		return generalFallback("Failed to parse classification")
	}

	slog.DebugContext(ctx, "message classified",
		"intent", result.Intent,
		"latency_ms", latency.Milliseconds())
	return result
}

func buildClassifierPrompt(message string, workload WorkloadContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Message to classify:\n\"%s\"\n\n", message)
	sb.WriteString("Context:\n")
	fmt.Fprintf(&sb, "User has %d pending tasks in their queue.\n", workload.PendingTaskCount)
	fmt.Fprintf(&sb, "User has %d active outgoing requests.\n", workload.ActiveRequestCount)
	return sb.String()
}

// parseClassification validates the reply before any field is used.
// An unknown intent is treated the same as malformed JSON.
func parseClassification(reply string) (IntentResult, bool) {
	obj, ok := extractJSON(reply)
	if !ok {
		return IntentResult{}, false
	}

	intentField := obj.Get("intent")
	if intentField.Type != gjson.String {
		return IntentResult{}, false
	}
	intent := Intent(strings.ToLower(strings.TrimSpace(intentField.Str)))
	if !intent.valid() {
		return IntentResult{}, false
	}

	return IntentResult{
		Intent:     intent,
		TaskNumber: taskNumberField(obj.Get("task_number")),
		Details:    obj.Get("details").String(),
	}, true
}

// taskNumberField accepts a JSON integer, an integral float or a numeric string.
func taskNumberField(r gjson.Result) *int {
	switch r.Type {
	case gjson.Number:
		f := r.Float()
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil
		}
		n := int(f)
		return &n
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}
