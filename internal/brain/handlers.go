package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/store"
)

const (
	summaryLimit     = 10
	descriptionLimit = 100
	directoryLimit   = 10
)

var (
	taskNumberPrefix = regexp.MustCompile(`^(\d+)[.:\s]`)
	taskNumberStrip  = regexp.MustCompile(`^\d+[.:\s]+`)
)

const (
	msgRouteMalformed   = "I had trouble understanding how to route this request. Could you tell me specifically who you'd like me to send this to?"
	msgRouteUnresolved  = "I found a potential match but couldn't locate the specific person. Could you help me identify who to ask?"
	msgNoActiveRequests = "You don't have any active outgoing requests. Need to send one?"
	msgNoTasks          = "🎉 No pending tasks! You're all caught up."
	msgNothingToRespond = "You don't have any pending tasks to respond to."
	msgEmptyResponse    = "What would you like to say? Include your answer after the task number, for example \"1: approved\"."
	msgAlreadyCompleted = "That task was already completed, so I didn't change anything. Use 'tasks' to see what's still pending."
	msgRequestMissing   = "Couldn't find the associated request. Please try again."
	msgTaskGone         = "I couldn't find that task anymore. Use 'tasks' to see what's still pending."
	msgNoProvider       = "The AI assistant isn't configured yet, so I can only help with requests, status and tasks right now. Ask an admin to set an LLM API key."
	msgGatewayFailed    = "Sorry, I'm having trouble thinking right now. Please try again in a moment."
)

func (a *Agent) handleRequest(ctx context.Context, user model.User, message string, orgID int64) (*Reply, error) {
	users, teams, err := a.orgDirectory(ctx, orgID)
	if err != nil {
		return nil, err
	}

	decision := a.router.Route(ctx, user, message, users, teams)
	switch decision.Outcome {
	case RouteMalformed:
		return &Reply{Text: msgRouteMalformed}, nil
	case RouteNoTarget:
		return &Reply{Text: fmt.Sprintf("I couldn't determine who should handle this. %s\n\nCould you tell me who to ask, or which team this is for?", decision.Reasoning)}, nil
	}

	routed, err := a.lifecycle.CreateRoutedRequest(ctx, NewRequest{
		OrgID:    orgID,
		From:     user,
		Target:   Target{UserID: decision.TargetUserID, TeamID: decision.TargetTeamID},
		Subject:  decision.Subject,
		Content:  decision.FormattedRequest,
		Priority: model.PriorityNormal,
	})
	if errors.Is(err, ErrUnresolvedTarget) {
		slog.InfoContext(ctx, "routing target did not resolve", "error", err)
		return &Reply{Text: msgRouteUnresolved}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text: fmt.Sprintf("✅ I've sent your request to **%s**.\n\n**Request:** %s\n\nI'll track this and follow up if needed. You can check status anytime by asking me.",
			routed.Assignee.Name, routed.Request.Content),
		Action:  ActionRequestCreated,
		Request: &routed.Request,
	}, nil
}

func (a *Agent) handleStatus(ctx context.Context, user model.User) (*Reply, error) {
	active, err := a.stores.Requests().ListActiveOutgoing(ctx, user.ID, summaryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing active requests: %w", err)
	}
	if len(active) == 0 {
		return &Reply{Text: msgNoActiveRequests}, nil
	}

	total, err := a.stores.Requests().CountActiveOutgoing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("counting active requests: %w", err)
	}

	names := newNameCache(a.stores)
	lines := make([]string, 0, len(active))
	for _, r := range active {
		target, err := names.target(ctx, r)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s **%s** → %s (%s)", statusMarker(r.Status), r.Subject, target, r.Status))
	}

	return &Reply{
		Text: fmt.Sprintf("**Your Active Requests (%d):**\n\n", total) + strings.Join(lines, "\n"),
	}, nil
}

func (a *Agent) handleTasks(ctx context.Context, user model.User) (*Reply, error) {
	pending := model.StatusPending
	tasks, err := a.stores.Tasks().ListByUser(ctx, user.ID, &pending, summaryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		return &Reply{Text: msgNoTasks}, nil
	}

	total, err := a.stores.Tasks().CountByUser(ctx, user.ID, &pending)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	names := newNameCache(a.stores)
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		from, err := names.requester(ctx, t.RequestID)
		if err != nil {
			return nil, err
		}
		var desc string
		if t.Description != nil {
			desc = logger.Truncate(*t.Description, descriptionLimit)
		}
		lines = append(lines, fmt.Sprintf("%d. %s **%s** (from %s)\n   %s", i+1, priorityMarker(t.Priority), t.Title, from, desc))
	}

	return &Reply{
		Text: fmt.Sprintf("**Your Task Queue (%d):**\n\n", total) +
			strings.Join(lines, "\n\n") +
			"\n\n*Reply with a number to respond to that task.*",
	}, nil
}

// handleRespond answers one of the user's pending tasks. The task is chosen by
// the classifier's task number, else a leading "N." / "N:" / "N " in the
// message, else the newest task.
func (a *Agent) handleRespond(ctx context.Context, user model.User, message string, taskNumber *int) (*Reply, error) {
	pending := model.StatusPending
	tasks, err := a.stores.Tasks().ListByUser(ctx, user.ID, &pending, 0)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		return &Reply{Text: msgNothingToRespond}, nil
	}

	n := resolveTaskNumber(message, taskNumber)
	if n < 1 || n > len(tasks) {
		return &Reply{Text: fmt.Sprintf("Task %d not found. You have %d pending tasks. Use 'tasks' to see them.", n, len(tasks))}, nil
	}

	response := cleanResponse(message)
	if response == "" {
		return &Reply{Text: msgEmptyResponse}, nil
	}

	task := tasks[n-1]
	ctx = logger.WithLogFields(ctx, logger.LogFields{TaskID: logger.Ptr(task.ID), RequestID: logger.Ptr(task.RequestID)})

	done, err := a.lifecycle.CompleteTask(ctx, user, task.ID, response)
	switch {
	case errors.Is(err, ErrInvalidState):
		slog.InfoContext(ctx, "task completion lost", "error", err)
		return &Reply{Text: msgAlreadyCompleted}, nil
	case errors.Is(err, ErrRequestNotFound):
		return &Reply{Text: msgRequestMissing}, nil
	case errors.Is(err, ErrTaskNotFound):
		return &Reply{Text: msgTaskGone}, nil
	case err != nil:
		return nil, err
	}

	requesterName := "requester"
	if done.Requester != nil {
		requesterName = done.Requester.Name
	}
	return &Reply{
		Text:   fmt.Sprintf("✅ Response sent to %s!\n\n**Your response:** \"%s\"", requesterName, response),
		Action: ActionTaskCompleted,
	}, nil
}

func resolveTaskNumber(message string, fromClassifier *int) int {
	if fromClassifier != nil {
		return *fromClassifier
	}
	if m := taskNumberPrefix.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}

func cleanResponse(message string) string {
	return strings.TrimSpace(taskNumberStrip.ReplaceAllString(message, ""))
}

func (a *Agent) handleGeneral(ctx context.Context, user model.User, message string, orgID int64) (*Reply, error) {
	users, teams, err := a.orgDirectory(ctx, orgID)
	if err != nil {
		return nil, err
	}

	prompt := buildGeneralPrompt(user, message, users, teams)

	start := time.Now()
	text, err := a.llm.Chat(ctx, llm.UserMessage(prompt), responderSystemPrompt)
	a.evals.record(ctx, evalCall{
		stage: model.LLMEvalStageGeneral, promptVersion: generalPromptVersion,
		input: prompt, output: text, err: err, parsed: err == nil, latency: time.Since(start),
	})
	if errors.Is(err, llm.ErrProviderUnavailable) {
		return &Reply{Text: msgNoProvider}, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "general reply failed", "error", err)
		return &Reply{Text: msgGatewayFailed}, nil
	}

	return &Reply{Text: text}, nil
}

func buildGeneralPrompt(user model.User, message string, users []model.User, teams []model.Team) string {
	memberNames := make([]string, 0, directoryLimit)
	for i, u := range users {
		if i == directoryLimit {
			break
		}
		memberNames = append(memberNames, u.Name)
	}
	teamNames := make([]string, len(teams))
	for i, t := range teams {
		teamNames[i] = t.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You're helping %s (%s).\n\n", user.Name, user.RoleOr("team member"))
	fmt.Fprintf(&sb, "Team members: %s\n", strings.Join(memberNames, ", "))
	fmt.Fprintf(&sb, "Teams: %s\n", strings.Join(teamNames, ", "))
	fmt.Fprintf(&sb, "\n\nUser message: %s", message)
	return sb.String()
}

func statusMarker(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "⏳"
	case model.StatusInProgress:
		return "🔄"
	case model.StatusWaitingResponse:
		return "💬"
	}
	return "📋"
}

func priorityMarker(p model.Priority) string {
	switch p {
	case model.PriorityUrgent:
		return "🔴"
	case model.PriorityHigh:
		return "🟠"
	case model.PriorityNormal:
		return "🔵"
	case model.PriorityLow:
		return "⚪"
	}
	return "📋"
}

// nameCache resolves display names for one rendered summary.
type nameCache struct {
	stores StoreProvider
	users  map[int64]string
	teams  map[int64]string
}

func newNameCache(stores StoreProvider) *nameCache {
	return &nameCache{stores: stores, users: map[int64]string{}, teams: map[int64]string{}}
}

func (c *nameCache) user(ctx context.Context, userID int64) (string, error) {
	if name, ok := c.users[userID]; ok {
		return name, nil
	}
	name := "Unknown"
	u, err := c.stores.Users().GetByID(ctx, userID)
	switch {
	case err == nil:
		name = u.Name
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("getting user: %w", err)
	}
	c.users[userID] = name
	return name, nil
}

func (c *nameCache) target(ctx context.Context, r model.Request) (string, error) {
	if r.ToUserID != nil {
		return c.user(ctx, *r.ToUserID)
	}
	if r.ToTeamID == nil {
		return "Unknown", nil
	}
	if name, ok := c.teams[*r.ToTeamID]; ok {
		return name, nil
	}
	name := "Unknown"
	t, err := c.stores.Teams().GetByID(ctx, *r.ToTeamID)
	switch {
	case err == nil:
		name = t.Name
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("getting team: %w", err)
	}
	c.teams[*r.ToTeamID] = name
	return name, nil
}

func (c *nameCache) requester(ctx context.Context, requestID int64) (string, error) {
	req, err := c.stores.Requests().GetByID(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return "Unknown", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting request: %w", err)
	}
	return c.user(ctx, req.FromUserID)
}
