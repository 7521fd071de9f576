package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:     "login <username>",
	Short:   "Log in and store the token in a profile",
	GroupID: "agent",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			p, err := ui.PromptPassword("Password: ")
			if err != nil {
				return err
			}
			password = p
		}

		ctx := context.Background()
		resp, err := identityClient.Login(ctx, username, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		me, err := identityClient.Me(ctx, resp.Token)
		if err != nil {
			return fmt.Errorf("resolving identity: %w", err)
		}

		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		name := selectedProfileName(cfg)
		if name == "" {
			name = "default"
		}
		p := target
		p.Username = me.Username
		p.Token = resp.Token
		cfg.Profiles[name] = p
		if cfg.Active == "" || profileName != "" {
			cfg.Active = name
		}
		if err := saveProfiles(cfg); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]any{
				"profile":    name,
				"username":   me.Username,
				"role":       me.Role,
				"expires_at": resp.ExpiresAt,
			})
		}
		fmt.Printf("Logged in as %s (%s), profile %q, token expires %s\n",
			ui.RenderAccent(me.Username), me.Role, name, resp.ExpiresAt.Local().Format(time.DateTime))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the identity behind the current token",
	GroupID: "agent",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := requireToken()
		if err != nil {
			return err
		}
		me, err := identityClient.Me(context.Background(), tok)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(me)
		}
		w := newTable()
		fmt.Fprintf(w, "id:\t%s\n", me.ID)
		fmt.Fprintf(w, "username:\t%s\n", me.Username)
		fmt.Fprintf(w, "email:\t%s\n", me.Email)
		fmt.Fprintf(w, "role:\t%s\n", me.Role)
		return w.Flush()
	},
}

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage named service profiles",
	GroupID: "system",
	// All profile subcommands are local file operations.
	PersistentPreRunE: skipClients,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if len(cfg.Profiles) == 0 {
			fmt.Println("no profiles configured; run 'sb login'")
			return nil
		}
		names := make([]string, 0, len(cfg.Profiles))
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tUSER\tINTERACTION\tTOKEN")
		for _, name := range names {
			p := cfg.Profiles[name]
			marker := "  "
			if name == cfg.Active {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, name, p.Username, p.InteractionURL, maskToken(p.Token))
		}
		return w.Flush()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		cfg.Active = name
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Printf("active profile set to %q\n", name)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a profile and its stored token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		delete(cfg.Profiles, name)
		if cfg.Active == name {
			cfg.Active = ""
		}
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Printf("profile %q removed\n", name)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "password (prompted when omitted)")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}
