package server

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

// In-memory stores for handler tests. The httptest servers call them
// concurrently, so each guards its maps.

type memAgents struct {
	mu     sync.Mutex
	agents map[int64]*model.Agent
	nextID int64
}

var _ store.AgentStore = (*memAgents)(nil)

func newMemAgents() *memAgents {
	return &memAgents{agents: make(map[int64]*model.Agent), nextID: 1}
}

func cloneAgent(a *model.Agent) *model.Agent {
	cp := *a
	cp.Skills = slices.Clone(a.Skills)
	if cp.Skills == nil {
		cp.Skills = []string{}
	}
	return &cp
}

func (m *memAgents) CreateAgent(_ context.Context, a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.agents {
		if existing.UserID == a.UserID || existing.Name == a.Name {
			return store.ErrDuplicate
		}
	}
	a.ID = m.nextID
	m.nextID++
	m.agents[a.ID] = cloneAgent(a)
	return nil
}

func (m *memAgents) GetAgent(_ context.Context, id int64) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneAgent(a), nil
}

func (m *memAgents) GetAgentByUser(_ context.Context, userID int64) (*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.UserID == userID {
			return cloneAgent(a), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memAgents) ListAgents(_ context.Context) ([]*model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, cloneAgent(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memAgents) UpdateAgent(_ context.Context, a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[a.ID]; !ok {
		return store.ErrNotFound
	}
	m.agents[a.ID] = cloneAgent(a)
	return nil
}

func (m *memAgents) UpdateAgentSkills(_ context.Context, id int64, skills []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Skills = slices.Clone(skills)
	return nil
}

func (m *memAgents) RunInTransaction(_ context.Context, fn func(tx store.AgentStore) error) error {
	return fn(m)
}

func (m *memAgents) Ping(context.Context) error { return nil }
func (m *memAgents) Close() error               { return nil }

type memSkills struct {
	mu     sync.Mutex
	skills map[int64]*model.Skill
	nextID int64
}

var _ store.SkillStore = (*memSkills)(nil)

func newMemSkills() *memSkills {
	return &memSkills{skills: make(map[int64]*model.Skill), nextID: 1}
}

func (m *memSkills) CreateSkill(_ context.Context, s *model.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.skills {
		if strings.EqualFold(existing.Name, s.Name) {
			return store.ErrDuplicate
		}
	}
	s.ID = m.nextID
	s.CreatedAt = time.Now().UTC()
	m.nextID++
	cp := *s
	m.skills[s.ID] = &cp
	return nil
}

func (m *memSkills) GetSkill(_ context.Context, id int64) (*model.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.skills[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSkills) GetSkillByName(_ context.Context, name string) (*model.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.skills {
		if strings.EqualFold(s.Name, name) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memSkills) ListSkills(_ context.Context, activeOnly bool) ([]*model.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Skill
	for _, s := range m.skills {
		if activeOnly && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memSkills) UpdateSkill(_ context.Context, s *model.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.skills[s.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *s
	m.skills[s.ID] = &cp
	return nil
}

func (m *memSkills) DeleteSkill(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.skills[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *memSkills) CountSkills(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.skills), nil
}

func (m *memSkills) Ping(context.Context) error { return nil }
func (m *memSkills) Close() error               { return nil }

type memUsers struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

var _ store.UserStore = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*model.User), nextID: 1}
}

func (m *memUsers) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.nextID++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetUser(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) ListUsers(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.IsActive {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memUsers) DeactivateUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return store.ErrNotFound
	}
	u.IsActive = false
	return nil
}

func (m *memUsers) Ping(context.Context) error { return nil }
func (m *memUsers) Close() error               { return nil }
