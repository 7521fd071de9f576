package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/events"
	"github.com/alfredjeanlab/switchboard/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Tail agent lifecycle events from NATS",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if target.NATSURL == "" {
			return fmt.Errorf("no NATS URL; pass --nats-url or set SWITCHBOARD_NATS_URL")
		}
		topic := events.TopicAgents
		if all, _ := cmd.Flags().GetBool("all"); all {
			topic = events.TopicAll
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := events.NewNATSSubscriber(target.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()

		fmt.Fprintln(os.Stderr, ui.RenderMuted("watching "+topic+" (ctrl-c to stop)"))
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				if jsonOutput {
					fmt.Printf("{\"topic\":%q,\"request_id\":%q,\"data\":%s}\n", msg.Topic, msg.RequestID, msg.Data)
					continue
				}
				line := describeEvent(msg)
				if msg.RequestID != "" {
					line += "  " + ui.RenderMuted(msg.RequestID)
				}
				fmt.Printf("%s  %s\n", ui.RenderMuted(time.Now().Format(time.TimeOnly)), line)
			}
		}
	},
}

// describeEvent renders an event as one human-readable line. Payloads that
// do not decode fall back to the raw JSON.
func describeEvent(msg events.Message) string {
	raw := func() string { return msg.Topic + " " + string(msg.Data) }

	switch msg.Topic {
	case events.TopicAgentStateChanged:
		var e events.AgentStateChanged
		if json.Unmarshal(msg.Data, &e) != nil {
			return raw()
		}
		return fmt.Sprintf("agent %d  %s -> %s  (%s)", e.AgentID, ui.RenderState(e.From), ui.RenderState(e.To), e.EventType)
	case events.TopicAgentCreated:
		var e events.AgentCreated
		if json.Unmarshal(msg.Data, &e) != nil || e.Agent == nil {
			return raw()
		}
		return fmt.Sprintf("agent %d  created for user %d as %s", e.Agent.ID, e.Agent.UserID, ui.RenderState(e.Agent.State))
	case events.TopicAgentSkillsReplaced:
		var e events.AgentSkillsReplaced
		if json.Unmarshal(msg.Data, &e) != nil {
			return raw()
		}
		return fmt.Sprintf("agent %d  skills %s", e.AgentID, joinOrDash(e.Skills))
	case events.TopicSkillCreated, events.TopicSkillUpdated:
		var e events.SkillChanged
		if json.Unmarshal(msg.Data, &e) != nil || e.Skill == nil {
			return raw()
		}
		verb := "created"
		if msg.Topic == events.TopicSkillUpdated {
			verb = "updated"
		}
		return fmt.Sprintf("skill %d  %s %s (active=%t)", e.Skill.ID, verb, e.Skill.Name, e.Skill.IsActive)
	case events.TopicSkillDeleted:
		var e events.SkillDeleted
		if json.Unmarshal(msg.Data, &e) != nil {
			return raw()
		}
		return fmt.Sprintf("skill %d  deleted", e.SkillID)
	}
	return raw()
}

func init() {
	watchCmd.Flags().String("nats-url", "", "NATS server URL")
	watchCmd.Flags().Bool("all", false, "include skill catalog events")
}
