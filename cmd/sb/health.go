package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/spf13/cobra"
)

type healthRow struct {
	Service string               `json:"service"`
	URL     string               `json:"url"`
	Status  *client.HealthStatus `json:"status,omitempty"`
	Error   string               `json:"error,omitempty"`
}

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Probe the health of all three services",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		probe := client.ProbeLive
		if ready, _ := cmd.Flags().GetBool("ready"); ready {
			probe = client.ProbeReady
		}

		ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
		defer cancel()

		targets := []struct {
			name string
			url  string
			c    interface {
				Health(context.Context, string) (*client.HealthStatus, error)
			}
		}{
			{"identity", target.IdentityURL, identityClient},
			{"registry", target.RegistryURL, registryClient},
			{"interaction", target.InteractionURL, interactionClient},
		}

		rows := make([]healthRow, 0, len(targets))
		var failed []string
		for _, t := range targets {
			row := healthRow{Service: t.name, URL: t.url}
			hs, err := t.c.Health(ctx, probe)
			switch {
			case err != nil:
				row.Error = err.Error()
				failed = append(failed, t.name)
			case hs.Status != probe:
				row.Status = hs
				failed = append(failed, t.name)
			default:
				row.Status = hs
			}
			rows = append(rows, row)
		}

		if jsonOutput {
			if err := printJSON(rows); err != nil {
				return err
			}
		} else {
			printHealth(rows)
		}
		if len(failed) > 0 {
			return fmt.Errorf("unhealthy: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

func printHealth(rows []healthRow) {
	w := newTable()
	fmt.Fprintln(w, "SERVICE\tSTATUS\tCHECKS\tURL")
	for _, r := range rows {
		status, checks := "unreachable", r.Error
		if r.Status != nil {
			status = r.Status.Status
			checks = formatChecks(r.Status.Checks)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Service, ui.RenderHealth(status), checks, r.URL)
	}
	w.Flush()
}

// formatChecks renders readiness checks as "name=result" pairs in name order.
func formatChecks(checks map[string]string) string {
	if len(checks) == 0 {
		return "-"
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + checks[name]
	}
	return strings.Join(parts, " ")
}

func init() {
	healthCmd.Flags().Bool("ready", false, "use the readiness probe instead of liveness")
}
