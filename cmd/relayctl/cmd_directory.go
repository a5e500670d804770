package main

import (
	"context"
	"fmt"

	"agentcomm.app/relay/internal/bootstrap"
	"agentcomm.app/relay/internal/service"
	"github.com/spf13/cobra"
)

var (
	teamOrgID       int64
	teamDescription string

	memberOrgID  int64
	memberTeamID int64
	memberName   string
	memberEmail  string
	memberRole   string
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			org, err := app.Services.Directory().CreateOrganization(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", org.ID, org.Slug, org.Name)
			return nil
		})
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a team in an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var description *string
		if teamDescription != "" {
			description = &teamDescription
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			team, err := app.Services.Directory().CreateTeam(ctx, teamOrgID, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", team.ID, team.Name)
			return nil
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage organization members",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a member to an organization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		member := service.NewMember{
			OrgID: memberOrgID,
			Name:  memberName,
			Email: memberEmail,
		}
		if memberTeamID != 0 {
			member.TeamID = &memberTeamID
		}
		if memberRole != "" {
			member.Role = &memberRole
		}

		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			user, err := app.Services.Directory().AddMember(ctx, member)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", user.ID, user.Name, user.Email)
			return nil
		})
	},
}

func init() {
	teamCreateCmd.Flags().Int64Var(&teamOrgID, "org", 0, "Organization id")
	teamCreateCmd.Flags().StringVar(&teamDescription, "description", "", "What the team handles; used for routing")
	_ = teamCreateCmd.MarkFlagRequired("org")

	userAddCmd.Flags().Int64Var(&memberOrgID, "org", 0, "Organization id")
	userAddCmd.Flags().Int64Var(&memberTeamID, "team", 0, "Team id")
	userAddCmd.Flags().StringVar(&memberName, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&memberEmail, "email", "", "Email address")
	userAddCmd.Flags().StringVar(&memberRole, "role", "", "Role or title; used for routing")
	_ = userAddCmd.MarkFlagRequired("org")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("email")
}
