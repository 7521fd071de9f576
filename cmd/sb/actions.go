package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/client"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:     "call",
	Short:   "Report the start or end of a call",
	GroupID: "agent",
}

var dndCmd = &cobra.Command{
	Use:     "dnd",
	Short:   "Enter or leave do-not-disturb (lunch between 11:00 and 13:00 UTC)",
	GroupID: "agent",
}

// actionCmd builds a subcommand that performs one agent action as the
// logged-in user.
func actionCmd(use, short, action string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := requireToken()
			if err != nil {
				return err
			}
			ts, err := eventTime(cmd)
			if err != nil {
				return err
			}
			skills, _ := cmd.Flags().GetStringSlice("skills")

			res, err := interactionClient.Act(context.Background(), tok, action, &client.ActionRequest{
				Timestamp: ts,
				SkillIDs:  skills,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(res)
			}
			printActivity(res)
			return nil
		},
	}
	addEventFlags(cmd)
	return cmd
}

func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().String("at", "", "event time, RFC3339 (default: now)")
	cmd.Flags().StringSlice("skills", nil, "skill ids to assign with the event")
}

// eventTime parses --at, defaulting to the current time.
func eventTime(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	return parseEventTime(at, time.Now())
}

func parseEventTime(at string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(at) == "" {
		return now, nil
	}
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want RFC3339, e.g. %s", at, now.Format(time.RFC3339))
	}
	return ts, nil
}

func init() {
	callCmd.AddCommand(actionCmd("start", "Start a call", "start_call"))
	callCmd.AddCommand(actionCmd("end", "End the current call", "end_call"))
	dndCmd.AddCommand(actionCmd("start", "Enter do-not-disturb", "start_do_not_disturb"))
	dndCmd.AddCommand(actionCmd("end", "Leave do-not-disturb", "end_do_not_disturb"))
}

// eventTypeArg accepts either an event type or an agent action name.
func eventTypeArg(s string) (model.EventType, error) {
	if ev, ok := model.EventForAction(strings.ToLower(s)); ok {
		return ev, nil
	}
	ev := model.EventType(strings.ToUpper(s))
	switch ev {
	case model.EventStartDoNotDisturb, model.EventEndDoNotDisturb,
		model.EventCallStarted, model.EventCallEnded, model.EventSkillsUpdate:
		return ev, nil
	}
	return "", fmt.Errorf("unknown event %q; use one of %s or an event type", s, strings.Join(model.Actions(), ", "))
}
