package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/brain"
	"agentcomm.app/relay/internal/model"
	"agentcomm.app/relay/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ChatTool handles the agent_chat MCP tool.
type ChatTool struct {
	agent  service.AgentService
	userID int64
}

func NewChatTool(agent service.AgentService, userID int64) *ChatTool {
	return &ChatTool{agent: agent, userID: userID}
}

func (t *ChatTool) Definition() mcp.Tool {
	return mcp.NewTool("agent_chat",
		mcp.WithDescription(
			"Send a message to the relay agent. It can route a request to a colleague or team, "+
				"report on your open requests, list your tasks, or record your answer to a task.",
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("What you want, in plain language"),
		),
	)
}

func (t *ChatTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := strings.TrimSpace(req.GetString("message", ""))
	if message == "" {
		return mcp.NewToolResultError("'message' is required"), nil
	}

	reply, err := t.agent.Chat(withUser(ctx, t.userID, "agent_chat"), t.userID, message)
	if err != nil {
		return toolError("chat failed", err), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	agent  service.AgentService
	userID int64
}

func NewListTasksTool(agent service.AgentService, userID int64) *ListTasksTool {
	return &ListTasksTool{agent: agent, userID: userID}
}

func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks assigned to you, newest first."),
		mcp.WithString("status",
			mcp.Description("Filter by status"),
			mcp.Enum(statusValues...),
		),
	)
}

func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := t.agent.ListTasks(withUser(ctx, t.userID, "list_tasks"), t.userID, req.GetString("status", ""))
	if err != nil {
		return toolError("listing tasks failed", err), nil
	}
	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tasks:\n\n", len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(&b, "- [%d] %s (%s, %s priority)\n", task.ID, task.Title, task.Status, task.Priority)
		if task.Description != nil && *task.Description != "" {
			fmt.Fprintf(&b, "  %s\n", logger.Truncate(*task.Description, 200))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ListRequestsTool handles the list_requests MCP tool.
type ListRequestsTool struct {
	agent  service.AgentService
	userID int64
}

func NewListRequestsTool(agent service.AgentService, userID int64) *ListRequestsTool {
	return &ListRequestsTool{agent: agent, userID: userID}
}

func (t *ListRequestsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_requests",
		mcp.WithDescription("List requests you have sent to others, newest first."),
		mcp.WithString("status",
			mcp.Description("Filter by status"),
			mcp.Enum(statusValues...),
		),
	)
}

func (t *ListRequestsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requests, err := t.agent.ListRequests(withUser(ctx, t.userID, "list_requests"), t.userID, req.GetString("status", ""))
	if err != nil {
		return toolError("listing requests failed", err), nil
	}
	if len(requests) == 0 {
		return mcp.NewToolResultText("No requests found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d requests:\n\n", len(requests))
	for _, r := range requests {
		fmt.Fprintf(&b, "- [%d] %s (%s)\n", r.ID, r.Subject, r.Status)
		if r.Response != nil {
			fmt.Fprintf(&b, "  Response: %s\n", logger.Truncate(*r.Response, 200))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// CompleteTaskTool handles the complete_task MCP tool.
type CompleteTaskTool struct {
	agent  service.AgentService
	userID int64
}

func NewCompleteTaskTool(agent service.AgentService, userID int64) *CompleteTaskTool {
	return &CompleteTaskTool{agent: agent, userID: userID}
}

func (t *CompleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Answer one of your pending tasks. The requester is notified with your response."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task id as shown by list_tasks"),
		),
		mcp.WithString("response",
			mcp.Required(),
			mcp.Description("Your answer to the requester"),
		),
	)
}

func (t *CompleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// ids exceed float64 precision, so they travel as strings
	taskID, err := strconv.ParseInt(strings.TrimSpace(req.GetString("task_id", "")), 10, 64)
	if err != nil || taskID <= 0 {
		return mcp.NewToolResultError("'task_id' must be a task id"), nil
	}
	response := strings.TrimSpace(req.GetString("response", ""))
	if response == "" {
		return mcp.NewToolResultError("'response' is required"), nil
	}

	completion, err := t.agent.CompleteTask(withUser(ctx, t.userID, "complete_task"), t.userID, taskID, response)
	if err != nil {
		return toolError("completing task failed", err), nil
	}

	name := "the requester"
	if completion.Requester != nil {
		name = completion.Requester.Name
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %d completed. %s has been notified.", completion.Task.ID, name)), nil
}

var statusValues = []string{
	string(model.StatusPending),
	string(model.StatusInProgress),
	string(model.StatusWaitingResponse),
	string(model.StatusCompleted),
	string(model.StatusCancelled),
}

// toolError keeps domain errors readable and hides the rest.
func toolError(prefix string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, brain.ErrTaskNotFound):
		return mcp.NewToolResultError("task not found")
	case errors.Is(err, brain.ErrInvalidState):
		return mcp.NewToolResultError("task is no longer pending")
	case errors.Is(err, brain.ErrNoOrganization):
		return mcp.NewToolResultError("the configured user is not a member of an organization")
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyResponse),
		errors.Is(err, service.ErrUserNotFound):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(prefix)
	}
}
