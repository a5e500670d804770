package main

import (
	"context"
	"fmt"
	"strings"

	"agentcomm.app/relay/internal/bootstrap"
	"github.com/spf13/cobra"
)

var (
	tokenUserID int64

	chatUserID  int64
	chatMessage string
)

// tokenCmd mints a local bearer token, mostly for development against the API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			token, expiresAt, err := app.Services.Auth().IssueToken(ctx, tokenUserID)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send one message to the agent as a user",
	Long: `Send one message to the agent as the given user and print its reply.

  relayctl chat --user 1790000000000000001 --message "ask finance for the Q3 numbers"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		message := strings.TrimSpace(chatMessage)
		if message == "" {
			return fmt.Errorf("--message must not be empty")
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			reply, err := app.Services.Agent().Chat(ctx, chatUserID, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			if reply.Request != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "request %d created\n", reply.Request.ID)
			}
			return nil
		})
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "User id")
	_ = tokenCmd.MarkFlagRequired("user")

	chatCmd.Flags().Int64Var(&chatUserID, "user", 0, "User id to act as")
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Message for the agent")
	_ = chatCmd.MarkFlagRequired("user")
	_ = chatCmd.MarkFlagRequired("message")
}
