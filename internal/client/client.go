// Package client provides transport-agnostic interfaces for the identity,
// registry and interaction services, and HTTP/JSON implementations of each.
//
// Every authenticated call takes the caller's bearer token as an explicit
// argument; clients hold no credentials of their own.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// RegistryClient talks to the agent registry.
type RegistryClient interface {
	ApplyEvent(ctx context.Context, token string, ev model.AgentEvent) (*model.Agent, error)
	CreateAgent(ctx context.Context, token string, req *CreateAgentRequest) (*model.Agent, error)
	GetAgent(ctx context.Context, token string, id int64) (*model.Agent, error)
	GetAgentByUser(ctx context.Context, token string, userID int64) (*model.Agent, error)
	ListAgents(ctx context.Context, token string) ([]*model.Agent, error)
	Health(ctx context.Context, probe string) (*HealthStatus, error)
}

// IdentityClient talks to the identity service.
type IdentityClient interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, token string, req *RegisterRequest) (*model.User, error)
	Validate(ctx context.Context, token string) (bool, error)
	Me(ctx context.Context, token string) (*model.Identity, error)
	GetUser(ctx context.Context, token string, id int64) (*model.User, error)
	ListUsers(ctx context.Context, token string) ([]*model.User, error)
	DeactivateUser(ctx context.Context, token string, id int64) error
	Health(ctx context.Context, probe string) (*HealthStatus, error)
}

// InteractionClient talks to the interaction service.
type InteractionClient interface {
	// Act performs an agent action (see model.Actions) as the token's owner.
	Act(ctx context.Context, token, action string, req *ActionRequest) (*model.ActivityResult, error)
	AdminActivity(ctx context.Context, token string, req *AdminActivityRequest) (*model.ActivityResult, error)
	UpdateAgentSkills(ctx context.Context, token string, agentID int64, skillIDs []string) (*model.SkillsResult, error)

	ListSkills(ctx context.Context, token string, activeOnly bool) ([]*model.Skill, error)
	GetSkill(ctx context.Context, token string, id int64) (*model.Skill, error)
	CreateSkill(ctx context.Context, token string, req *SkillRequest) (*model.Skill, error)
	UpdateSkill(ctx context.Context, token string, id int64, req *SkillRequest) (*model.Skill, error)
	ToggleSkill(ctx context.Context, token string, id int64) (*model.Skill, error)
	DeleteSkill(ctx context.Context, token string, id int64) error

	Health(ctx context.Context, probe string) (*HealthStatus, error)
}

// Health probes.
const (
	ProbeLive  = "live"
	ProbeReady = "ready"
)

// HealthStatus is the body of a health probe response.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type CreateAgentRequest struct {
	UserID       int64            `json:"user_id"`
	InitialState model.AgentState `json:"initial_state,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// ActionRequest is the body of an agent action.
type ActionRequest struct {
	Timestamp time.Time `json:"timestamp"`
	SkillIDs  []string  `json:"skill_ids,omitempty"`
}

// AdminActivityRequest submits an event on behalf of any agent.
type AdminActivityRequest struct {
	AgentID   int64           `json:"agent_id"`
	Action    model.EventType `json:"action"`
	Timestamp time.Time       `json:"timestamp"`
	SkillIDs  []string        `json:"skill_ids,omitempty"`
}

type SkillRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
