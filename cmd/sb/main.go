package main

import (
	"fmt"
	"os"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/spf13/cobra"
)

var (
	jsonOutput  bool
	profileName string
	target      Profile

	identityClient    client.IdentityClient
	registryClient    client.RegistryClient
	interactionClient client.InteractionClient
)

var rootCmd = &cobra.Command{
	Use:           "sb <command>",
	Short:         "Call-center agent state: services and operator CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveTarget(cmd)
		if err != nil {
			return err
		}
		target = t
		identityClient = client.NewIdentityHTTPClient(t.IdentityURL)
		registryClient = client.NewRegistryHTTPClient(t.RegistryURL)
		interactionClient = client.NewInteractionHTTPClient(t.InteractionURL)
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		return nil
	},
}

// skipClients is used by commands that never talk to a service.
func skipClients(*cobra.Command, []string) error { return nil }

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.StringVar(&profileName, "profile", "", "profile to use (default: the active profile)")
	pf.String("identity-url", "", "identity service URL")
	pf.String("registry-url", "", "registry service URL")
	pf.String("interaction-url", "", "interaction service URL")
	pf.String("token", "", "bearer token (default: the profile's token)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "agent", Title: "Agent:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Agent
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(dndCmd)

	// Administration
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(usersCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		prefix := "Error:"
		if ui.ShouldUseColor() {
			prefix = ui.RenderError(prefix)
		}
		fmt.Fprintln(os.Stderr, prefix, err)
		os.Exit(1)
	}
}
