package sync

import (
	"context"
	"errors"
	"strings"
	gosync "sync"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// fakeRoster is an in-memory Lister. It returns agents in insertion order so
// that tests exercise ExportRoster's sorting.
type fakeRoster struct {
	mu     gosync.Mutex
	agents []*model.Agent
	err    error
}

func (f *fakeRoster) add(id int64, name string, st model.AgentState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = append(f.agents, &model.Agent{
		ID:              id,
		Name:            name,
		UserID:          id + 100,
		State:           st,
		LastStateChange: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Skills:          []string{},
	})
}

func (f *fakeRoster) ListAgents(context.Context) ([]*model.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Agent, len(f.agents))
	copy(out, f.agents)
	return out, nil
}

var errListFailed = errors.New("list failed")

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
