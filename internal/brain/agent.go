package brain

import (
	"context"
	"fmt"
	"log/slog"

	"agentcomm.app/relay/common/llm"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Action tags what a reply did, if anything.
type Action string

const (
	ActionNone           Action = ""
	ActionRequestCreated Action = "request_created"
	ActionTaskCompleted  Action = "task_completed"
)

// Reply is what the agent says back. Request is set only when a request was
// created.
type Reply struct {
	Text    string
	Action  Action
	Request *model.Request
	Intent  Intent
}

// Agent turns one chat message into one reply.
type Agent struct {
	stores     StoreProvider
	classifier *Classifier
	router     *Router
	lifecycle  *Lifecycle
	llm        llm.Client
	evals      *EvalRecorder
}

func NewAgent(stores StoreProvider, client llm.Client, lifecycle *Lifecycle, evals *EvalRecorder) *Agent {
	return &Agent{
		stores:     stores,
		classifier: NewClassifier(client, evals),
		router:     NewRouter(client, evals),
		lifecycle:  lifecycle,
		llm:        client,
		evals:      evals,
	}
}

// HandleUserMessage classifies message and runs the matching handler.
// user must belong to orgID; anything the user should hear about comes back
// as reply text, and the error is reserved for store failures.
func (a *Agent) HandleUserMessage(ctx context.Context, user model.User, message string, orgID int64) (*Reply, error) {
	if !user.InOrg(orgID) {
		return nil, ErrNoOrganization
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(user.ID),
		OrgID:     logger.Ptr(orgID),
		Component: "relay.brain.agent",
	})

	sc := logger.StartSpan(ctx, "agent.handle_message")
	defer sc.End()
	ctx = sc.Context()

	workload, err := a.workload(ctx, user.ID)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	result := a.classifier.Classify(ctx, message, workload)
	ctx = logger.WithLogFields(ctx, logger.LogFields{Intent: logger.Ptr(string(result.Intent))})
	sc.SetAttributes(
		attribute.String("agent.intent", string(result.Intent)),
		attribute.Bool("agent.intent_fallback", result.Fallback),
	)

	slog.InfoContext(ctx, "handling agent message",
		"message", logger.Truncate(message, 100),
		"fallback", result.Fallback)

	var reply *Reply
	switch result.Intent {
	case IntentRequest:
		reply, err = a.handleRequest(ctx, user, message, orgID)
	case IntentStatus:
		reply, err = a.handleStatus(ctx, user)
	case IntentTasks:
		reply, err = a.handleTasks(ctx, user)
	case IntentRespond:
		reply, err = a.handleRespond(ctx, user, message, result.TaskNumber)
	default:
		reply, err = a.handleGeneral(ctx, user, message, orgID)
	}
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("handling %s intent: %w", result.Intent, err)
	}

	reply.Intent = result.Intent
	return reply, nil
}

func (a *Agent) workload(ctx context.Context, userID int64) (WorkloadContext, error) {
	var (
		pending int64
		active  int64
	)
	pendingStatus := model.StatusPending

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = a.stores.Tasks().CountByUser(gctx, userID, &pendingStatus)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = a.stores.Requests().CountActiveOutgoing(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return WorkloadContext{}, fmt.Errorf("loading workload: %w", err)
	}

	return WorkloadContext{PendingTaskCount: int(pending), ActiveRequestCount: int(active)}, nil
}

// orgDirectory loads the org's members and teams concurrently.
func (a *Agent) orgDirectory(ctx context.Context, orgID int64) ([]model.User, []model.Team, error) {
	var (
		users []model.User
		teams []model.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = a.stores.Users().ListByOrg(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = a.stores.Teams().ListByOrg(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("loading org directory: %w", err)
	}
	return users, teams, nil
}
