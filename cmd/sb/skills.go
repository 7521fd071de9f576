package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:     "skills",
	Short:   "Browse and manage the skill catalog",
	GroupID: "admin",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		activeOnly, _ := cmd.Flags().GetBool("active")
		skills, err := interactionClient.ListSkills(context.Background(), tok, activeOnly)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(skills)
		}
		printSkillList(skills)
		return nil
	},
}

var skillsShowCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Show one skill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return skillOp(args[0], func(ctx context.Context, tok string, id int64) (*model.Skill, error) {
			return interactionClient.GetSkill(ctx, tok, id)
		})
	},
}

var skillsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a skill (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		req := skillRequest(cmd, args[0])
		s, err := interactionClient.CreateSkill(context.Background(), tok, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(s)
		}
		fmt.Printf("Created skill %d (%s)\n", s.ID, s.Name)
		return nil
	},
}

var skillsUpdateCmd = &cobra.Command{
	Use:   "update <skill-id> <name>",
	Short: "Rename or redescribe a skill (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := skillRequest(cmd, args[1])
		return skillOp(args[0], func(ctx context.Context, tok string, id int64) (*model.Skill, error) {
			return interactionClient.UpdateSkill(ctx, tok, id, req)
		})
	},
}

var skillsToggleCmd = &cobra.Command{
	Use:   "toggle <skill-id>",
	Short: "Flip a skill between active and inactive (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return skillOp(args[0], func(ctx context.Context, tok string, id int64) (*model.Skill, error) {
			return interactionClient.ToggleSkill(ctx, tok, id)
		})
	},
}

var skillsDeleteCmd = &cobra.Command{
	Use:   "delete <skill-id>",
	Short: "Delete a skill (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "skill id")
		if err != nil {
			return err
		}
		if err := interactionClient.DeleteSkill(context.Background(), tok, id); err != nil {
			return err
		}
		fmt.Printf("Deleted skill %d\n", id)
		return nil
	},
}

// skillOp runs a single-skill call and prints the result.
func skillOp(rawID string, call func(ctx context.Context, tok string, id int64) (*model.Skill, error)) error {
	tok, err := requireToken()
	if err != nil {
		return err
	}
	id, err := parseID(rawID, "skill id")
	if err != nil {
		return err
	}
	s, err := call(context.Background(), tok, id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}
	printSkill(s)
	return nil
}

func skillRequest(cmd *cobra.Command, name string) *client.SkillRequest {
	req := &client.SkillRequest{Name: name}
	req.Description, _ = cmd.Flags().GetString("description")
	if cmd.Flags().Changed("inactive") {
		inactive, _ := cmd.Flags().GetBool("inactive")
		active := !inactive
		req.IsActive = &active
	}
	return req
}

func init() {
	skillsListCmd.Flags().Bool("active", false, "only active skills")
	for _, c := range []*cobra.Command{skillsCreateCmd, skillsUpdateCmd} {
		c.Flags().String("description", "", "skill description")
		c.Flags().Bool("inactive", false, "mark the skill inactive")
	}

	skillsCmd.AddCommand(skillsListCmd)
	skillsCmd.AddCommand(skillsShowCmd)
	skillsCmd.AddCommand(skillsCreateCmd)
	skillsCmd.AddCommand(skillsUpdateCmd)
	skillsCmd.AddCommand(skillsToggleCmd)
	skillsCmd.AddCommand(skillsDeleteCmd)
}
