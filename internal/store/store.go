// Package store defines the persistence interfaces for agents, skills and
// users. Each service owns exactly one of them.
package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// AgentStore persists agents for the registry.
type AgentStore interface {
	// CreateAgent inserts a and sets a.ID.
	CreateAgent(ctx context.Context, a *model.Agent) error
	GetAgent(ctx context.Context, id int64) (*model.Agent, error)
	GetAgentByUser(ctx context.Context, userID int64) (*model.Agent, error)
	// ListAgents returns every agent ordered by name.
	ListAgents(ctx context.Context) ([]*model.Agent, error)
	// UpdateAgent writes state, last-state-change and skills in one statement.
	UpdateAgent(ctx context.Context, a *model.Agent) error
	UpdateAgentSkills(ctx context.Context, id int64, skills []string) error

	RunInTransaction(ctx context.Context, fn func(tx AgentStore) error) error
	Ping(ctx context.Context) error
	Close() error
}

// SkillStore persists the skill catalog.
type SkillStore interface {
	// CreateSkill inserts s and sets s.ID and s.CreatedAt.
	CreateSkill(ctx context.Context, s *model.Skill) error
	GetSkill(ctx context.Context, id int64) (*model.Skill, error)
	// GetSkillByName matches case-insensitively.
	GetSkillByName(ctx context.Context, name string) (*model.Skill, error)
	// ListSkills returns skills ordered by name.
	ListSkills(ctx context.Context, activeOnly bool) ([]*model.Skill, error)
	UpdateSkill(ctx context.Context, s *model.Skill) error
	DeleteSkill(ctx context.Context, id int64) error
	CountSkills(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// UserStore persists identities.
type UserStore interface {
	// CreateUser inserts u and sets u.ID and u.CreatedAt.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// ListUsers returns active users ordered by username.
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeactivateUser(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close() error
}
