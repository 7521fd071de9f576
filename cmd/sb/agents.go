package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:     "agents",
	Short:   "Inspect and register agents",
	GroupID: "admin",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		agents, err := registryClient.ListAgents(context.Background(), tok)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(agents)
		}
		printAgentList(agents)
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <agent-id>",
	Short: "Show one agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		ctx := context.Background()

		var a *model.Agent
		if byUser, _ := cmd.Flags().GetBool("user"); byUser {
			userID, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			a, err = registryClient.GetAgentByUser(ctx, tok, userID)
			if err != nil {
				return err
			}
		} else {
			id, err := parseID(args[0], "agent id")
			if err != nil {
				return err
			}
			a, err = registryClient.GetAgent(ctx, tok, id)
			if err != nil {
				return err
			}
		}
		if jsonOutput {
			return printJSON(a)
		}
		printAgent(a)
		return nil
	},
}

var agentsCreateCmd = &cobra.Command{
	Use:   "create <user-id>",
	Short: "Register an agent for an existing user (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		userID, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		req := &client.CreateAgentRequest{UserID: userID}
		if s, _ := cmd.Flags().GetString("state"); s != "" {
			st, err := model.ParseAgentState(s)
			if err != nil {
				return err
			}
			req.InitialState = st
		}
		a, err := registryClient.CreateAgent(context.Background(), tok, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(a)
		}
		fmt.Printf("Created agent %d (%s)\n", a.ID, a.Name)
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:     "admin",
	Short:   "Act on any agent (admin)",
	GroupID: "admin",
}

var adminActivityCmd = &cobra.Command{
	Use:   "activity <agent-id> <event>",
	Short: "Submit an event for an agent",
	Long: `Submit an event for an agent. <event> is an action name (start_call,
end_call, start_do_not_disturb, end_do_not_disturb) or an event type
such as CALL_STARTED or SKILLS_UPDATE.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		agentID, err := parseID(args[0], "agent id")
		if err != nil {
			return err
		}
		ev, err := eventTypeArg(args[1])
		if err != nil {
			return err
		}
		ts, err := eventTime(cmd)
		if err != nil {
			return err
		}
		skills, _ := cmd.Flags().GetStringSlice("skills")

		res, err := interactionClient.AdminActivity(context.Background(), tok, &client.AdminActivityRequest{
			AgentID:   agentID,
			Action:    ev,
			Timestamp: ts,
			SkillIDs:  skills,
		})
		if err != nil {
			if model.SkillsApplied(err) {
				return fmt.Errorf("%w (skills were still applied)", err)
			}
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		printActivity(res)
		return nil
	},
}

var adminSkillsCmd = &cobra.Command{
	Use:   "skills <agent-id> <skill-id>...",
	Short: "Replace an agent's skills",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		agentID, err := parseID(args[0], "agent id")
		if err != nil {
			return err
		}
		res, err := interactionClient.UpdateAgentSkills(context.Background(), tok, agentID, args[1:])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		fmt.Printf("Agent %d skills: %s\n", res.AgentID, joinOrDash(res.UpdatedSkills))
		return nil
	},
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func init() {
	agentsShowCmd.Flags().Bool("user", false, "treat the argument as a user id")
	agentsCreateCmd.Flags().String("state", "", "initial state (default AVAILABLE)")
	addEventFlags(adminActivityCmd)

	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	agentsCmd.AddCommand(agentsCreateCmd)

	adminCmd.AddCommand(adminActivityCmd)
	adminCmd.AddCommand(adminSkillsCmd)
}
