package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
)

const maxSubjectLen = 60

// RoutingResponse is the JSON shape the router asks for. Ids are strings so
// snowflake ids survive models that round large numbers.
type RoutingResponse struct {
	TargetUserID     *string `json:"target_user_id" jsonschema_description:"Id of the user who should handle this, or null"`
	TargetTeamID     *string `json:"target_team_id" jsonschema_description:"Id of the team who should handle this, or null"`
	Confidence       float64 `json:"confidence" jsonschema_description:"0.0-1.0"`
	Reasoning        string  `json:"reasoning" jsonschema_description:"Brief explanation of why this target"`
	FormattedRequest string  `json:"formatted_request" jsonschema_description:"Clear, professional version of the request"`
	Subject          string  `json:"subject" jsonschema_description:"Short subject line (max 60 chars)"`
}

var routingSchema = llm.GenerateSchema[RoutingResponse]()

// RouteOutcome says whether a RoutingDecision can be acted on.
type RouteOutcome int

const (
	RouteResolved RouteOutcome = iota
	// RouteMalformed covers gateway failures and replies that are not the
	// requested JSON object.
	RouteMalformed
	// RouteNoTarget is a well-formed reply naming neither a user nor a team.
	RouteNoTarget
)

type RoutingDecision struct {
	Outcome          RouteOutcome
	TargetUserID     *int64
	TargetTeamID     *int64
	Confidence       float64
	Reasoning        string
	FormattedRequest string
	Subject          string
}

type Router struct {
	llm   llm.Client
	evals *EvalRecorder
}

func NewRouter(client llm.Client, evals *EvalRecorder) *Router {
	return &Router{llm: client, evals: evals}
}

type orgContextUser struct {
	ID     int64   `json:"id,string"`
	Name   string  `json:"name"`
	Role   *string `json:"role"`
	TeamID *string `json:"team_id"`
}

type orgContextTeam struct {
	ID          int64   `json:"id,string"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type orgContext struct {
	Users []orgContextUser `json:"users"`
	Teams []orgContextTeam `json:"teams"`
}

// Route asks the model who should receive message. It never returns an
// error; every failure is a decision the caller turns into a clarification.
func (r *Router) Route(ctx context.Context, requester model.User, message string, users []model.User, teams []model.Team) RoutingDecision {
	prompt, err := buildRoutingPrompt(requester, message, users, teams)
	if err != nil {
		slog.ErrorContext(ctx, "router: failed to build org context", "error", err)
		return RoutingDecision{Outcome: RouteMalformed}
	}

	start := time.Now()
	reply, err := r.llm.Chat(ctx, llm.UserMessage(prompt), routerSystemPrompt,
		llm.WithJSONSchema("routing_decision", routingSchema),
		llm.WithTemperature(0.1),
	)
	latency := time.Since(start)

	if err != nil {
		r.evals.record(ctx, evalCall{
			stage: model.LLMEvalStageRoute, promptVersion: routerPromptVersion,
			input: prompt, err: err, latency: latency,
		})
		slog.WarnContext(ctx, "router: llm call failed", "error", err)
		return RoutingDecision{Outcome: RouteMalformed}
	}

	decision, ok := parseRoutingDecision(reply, message)
	r.evals.record(ctx, evalCall{
		stage: model.LLMEvalStageRoute, promptVersion: routerPromptVersion,
		input: prompt, output: reply, parsed: ok, latency: latency,
	})
	if !ok {
		slog.WarnContext(ctx, "router: unparseable reply", "reply", logger.Truncate(reply, 200))
		return RoutingDecision{Outcome: RouteMalformed}
	}

	slog.InfoContext(ctx, "request routed",
		"outcome", decision.Outcome,
		"target_user_id", idAttr(decision.TargetUserID),
		"target_team_id", idAttr(decision.TargetTeamID),
		"confidence", decision.Confidence,
		"latency_ms", latency.Milliseconds())
	return decision
}

// idAttr renders an optional id for logging; nil logs as null.
func idAttr(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func buildRoutingPrompt(requester model.User, message string, users []model.User, teams []model.Team) (string, error) {
	oc := orgContext{
		Users: make([]orgContextUser, 0, len(users)),
		Teams: make([]orgContextTeam, 0, len(teams)),
	}
	for _, u := range users {
		if u.ID == requester.ID {
			continue
		}
		cu := orgContextUser{ID: u.ID, Name: u.Name, Role: u.Role}
		if u.TeamID != nil {
			teamID := fmt.Sprint(*u.TeamID)
			cu.TeamID = &teamID
		}
		oc.Users = append(oc.Users, cu)
	}
	for _, t := range teams {
		oc.Teams = append(oc.Teams, orgContextTeam{ID: t.ID, Name: t.Name, Description: t.Description})
	}

	payload, err := json.MarshalIndent(oc, "", "  ")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Route this request from %s (%s):\n\n", requester.Name, requester.RoleOr("team member"))
	fmt.Fprintf(&sb, "\"%s\"\n\n", message)
	sb.WriteString("Organizational context:\n")
	sb.Write(payload)
	sb.WriteString("\n")
	return sb.String(), nil
}

// parseRoutingDecision validates the reply and fills defaults from message.
func parseRoutingDecision(reply, message string) (RoutingDecision, bool) {
	obj, ok := extractJSON(reply)
	if !ok {
		return RoutingDecision{}, false
	}

	d := RoutingDecision{
		TargetUserID:     idField(obj.Get("target_user_id")),
		TargetTeamID:     idField(obj.Get("target_team_id")),
		Confidence:       clamp01(obj.Get("confidence").Float()),
		Reasoning:        strings.TrimSpace(obj.Get("reasoning").String()),
		FormattedRequest: strings.TrimSpace(obj.Get("formatted_request").String()),
		Subject:          strings.TrimSpace(obj.Get("subject").String()),
	}
	if d.FormattedRequest == "" {
		d.FormattedRequest = message
	}
	if d.Subject == "" {
		d.Subject = message
	}
	d.Subject = clip(d.Subject, maxSubjectLen)

	if d.TargetUserID == nil && d.TargetTeamID == nil {
		d.Outcome = RouteNoTarget
	}
	return d, true
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
