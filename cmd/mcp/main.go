// relay-mcp serves the relay agent over MCP's stdio transport.
//
// Usage:
//
//	MCP_USER_ID=<user id> relay-mcp
//
// Logs go to stderr so they never interleave with the protocol on stdout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/bootstrap"
	relaymcp "agentcomm.app/relay/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeMCP)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg, os.Stderr)

	if cfg.MCPUserID == 0 {
		return fmt.Errorf("MCP_USER_ID is required")
	}

	if err := id.Init(3); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	agent := app.Services.Agent()
	if _, err := app.Backend.Stores.Users().GetByID(ctx, cfg.MCPUserID); err != nil {
		return fmt.Errorf("loading MCP user %d: %w", cfg.MCPUserID, err)
	}

	slog.InfoContext(ctx, "relay mcp server starting", "user_id", cfg.MCPUserID)
	return server.ServeStdio(relaymcp.NewServer(agent, cfg.MCPUserID))
}
