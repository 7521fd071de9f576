package registry

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

// mockStore is a minimal in-memory store.AgentStore for registry tests.
type mockStore struct {
	mu     sync.Mutex
	agents map[int64]*model.Agent
	nextID int64

	updates      int // UpdateAgent calls
	skillUpdates int // UpdateAgentSkills calls
	failWith     error
}

var _ store.AgentStore = (*mockStore)(nil)

func newMockStore(agents ...*model.Agent) *mockStore {
	m := &mockStore{agents: make(map[int64]*model.Agent), nextID: 1}
	for _, a := range agents {
		m.agents[a.ID] = clone(a)
		if a.ID >= m.nextID {
			m.nextID = a.ID + 1
		}
	}
	return m
}

func clone(a *model.Agent) *model.Agent {
	cp := *a
	cp.Skills = slices.Clone(a.Skills)
	if cp.Skills == nil {
		cp.Skills = []string{}
	}
	return &cp
}

func (m *mockStore) CreateAgent(_ context.Context, a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.agents {
		if existing.UserID == a.UserID || existing.Name == a.Name {
			return store.ErrDuplicate
		}
	}
	a.ID = m.nextID
	m.nextID++
	m.agents[a.ID] = clone(a)
	return nil
}

func (m *mockStore) GetAgent(_ context.Context, id int64) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(a), nil
}

func (m *mockStore) GetAgentByUser(_ context.Context, userID int64) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.UserID == userID {
			return clone(a), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListAgents(_ context.Context) ([]*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) UpdateAgent(_ context.Context, a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.ID]; !ok {
		return store.ErrNotFound
	}
	m.updates++
	m.agents[a.ID] = clone(a)
	return nil
}

func (m *mockStore) UpdateAgentSkills(_ context.Context, id int64, skills []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return store.ErrNotFound
	}
	m.skillUpdates++
	a.Skills = slices.Clone(skills)
	return nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.AgentStore) error) error {
	return fn(m)
}

func (m *mockStore) Ping(context.Context) error {
	if m.failWith != nil {
		return m.failWith
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) get(id int64) *model.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.agents[id])
}

var errBoom = errors.New("connection refused")
