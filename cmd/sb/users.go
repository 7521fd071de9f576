package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Short:   "Manage identity users (admin)",
	GroupID: "admin",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		users, err := identityClient.ListUsers(context.Background(), tok)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(users)
		}
		printUserList(users)
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username> <email>",
	Short: "Register a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			p, err := ui.PromptPassword("Password for " + args[0] + ": ")
			if err != nil {
				return err
			}
			password = p
		}
		isAdmin, _ := cmd.Flags().GetBool("admin")

		// Registration is public; only admin creation needs a token.
		u, err := identityClient.Register(context.Background(), target.Token, &client.RegisterRequest{
			Username: args[0],
			Email:    args[1],
			Password: password,
			IsAdmin:  isAdmin,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(u)
		}
		fmt.Printf("Registered user %d (%s)\n", u.ID, u.Username)
		return nil
	},
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Deactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "user id")
		if err != nil {
			return err
		}
		if err := identityClient.DeactivateUser(context.Background(), tok, id); err != nil {
			return err
		}
		fmt.Printf("Deactivated user %d\n", id)
		return nil
	},
}

func init() {
	usersAddCmd.Flags().String("password", "", "password (prompted when omitted)")
	usersAddCmd.Flags().Bool("admin", false, "create an admin (requires an admin token)")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeactivateCmd)
}
