// Package mcp exposes the agent to MCP clients. Every tool acts as a single
// configured relay user.
package mcp

import (
	"context"

	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

// NewServer registers the relay tools on a fresh MCP server.
func NewServer(agent service.AgentService, userID int64) *server.MCPServer {
	s := server.NewMCPServer(
		"relay",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, t := range Tools(agent, userID) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// Tool is one MCP tool: its schema and its handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func Tools(agent service.AgentService, userID int64) []Tool {
	return []Tool{
		NewChatTool(agent, userID),
		NewListTasksTool(agent, userID),
		NewListRequestsTool(agent, userID),
		NewCompleteTaskTool(agent, userID),
	}
}

func withUser(ctx context.Context, userID int64, tool string) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		UserID:    &userID,
		Component: "relay.mcp." + tool,
	})
}

const instructions = `Relay routes work between colleagues. Use agent_chat to talk to the
relay agent in natural language: ask someone for something, check on requests
you sent, or see what is waiting on you. Use the list and complete tools for
direct access to requests and tasks.`
