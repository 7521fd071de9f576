package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// Lister is the read side of the agent store that a roster export needs.
type Lister interface {
	ListAgents(ctx context.Context) ([]*model.Agent, error)
}

// header is the first JSONL record written by ExportRoster.
type header struct {
	Version    string                   `json:"version"`
	Type       string                   `json:"type"`
	Timestamp  time.Time                `json:"timestamp"`
	AgentCount int                      `json:"agent_count"`
	ByState    map[model.AgentState]int `json:"by_state"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string       `json:"type"`
	Data *model.Agent `json:"data"`
}

// ExportRoster writes every agent as JSONL to w: a header carrying per-state
// counts, then one "agent" record per agent sorted by id.
func ExportRoster(ctx context.Context, l Lister, w io.Writer, now time.Time) error {
	agents, err := l.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("list agents: %w", err)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })

	byState := make(map[model.AgentState]int, len(model.AgentStates))
	for _, st := range model.AgentStates {
		byState[st] = 0
	}
	for _, a := range agents {
		byState[a.State]++
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  now.UTC(),
		AgentCount: len(agents),
		ByState:    byState,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, a := range agents {
		if err := enc.Encode(record{Type: "agent", Data: a}); err != nil {
			return fmt.Errorf("encode agent %d: %w", a.ID, err)
		}
	}
	return nil
}
