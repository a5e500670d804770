// relayctl is the operator CLI: migrations, directory setup, local tokens and
// a terminal chat with the agent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"agentcomm.app/relay/common/id"
	"agentcomm.app/relay/common/logger"
	"agentcomm.app/relay/core/config"
	"agentcomm.app/relay/internal/bootstrap"
	"github.com/spf13/cobra"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Operate a relay deployment",
	Long: `relayctl manages a relay database and talks to the agent directly.

It reads the same environment as the server (DB_DRIVER, DATABASE_URL,
JWT_SECRET, LLM_PROVIDER, ...), loading .env.cli or .env in development.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	orgCmd.AddCommand(orgCreateCmd)
	teamCmd.AddCommand(teamCreateCmd)
	userCmd.AddCommand(userAddCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, installs logging on stderr and returns a context bounded
// by --timeout.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, config.Config, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg, os.Stderr)

	if err := id.Init(4); err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("initializing id generator: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return ctx, cancel, cfg, nil
}

// withApp runs fn against a fully wired relay.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx, cancel, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
