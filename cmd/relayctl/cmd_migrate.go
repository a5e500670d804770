package main

import (
	"fmt"

	"agentcomm.app/relay/internal/bootstrap"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending goose migrations for the configured DB_DRIVER.

SQLite databases are also migrated whenever a relay binary opens them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel, cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		backend, err := bootstrap.OpenBackend(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer backend.Close()

		if err := backend.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DB.Driver)
		return nil
	},
}
