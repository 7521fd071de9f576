// Package orchestrator turns authenticated agent and admin actions into
// agent events and forwards them to the registry. It never mutates agent
// state itself and never retries a forwarded event.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// IdentityResolver answers who-am-I for a bearer token.
type IdentityResolver interface {
	Me(ctx context.Context, token string) (*model.Identity, error)
}

// SkillCatalog resolves skills by id.
type SkillCatalog interface {
	GetSkill(ctx context.Context, id int64) (*model.Skill, error)
}

// Registry is the subset of the agent registry the orchestrator calls.
type Registry interface {
	ApplyEvent(ctx context.Context, token string, ev model.AgentEvent) (*model.Agent, error)
	GetAgentByUser(ctx context.Context, token string, userID int64) (*model.Agent, error)
}

// Probe checks one dependency for readiness.
type Probe func(ctx context.Context) error

// Deps are the collaborators of a Service.
type Deps struct {
	Identity IdentityResolver
	Catalog  SkillCatalog
	Registry Registry
	// Probes are run by Ready, keyed by dependency name.
	Probes map[string]Probe
	Logger *slog.Logger
}

// Service implements the interaction operations.
type Service struct {
	identity IdentityResolver
	catalog  SkillCatalog
	registry Registry
	probes   map[string]Probe
	logger   *slog.Logger
	now      func() time.Time
}

func New(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		identity: d.Identity,
		catalog:  d.Catalog,
		registry: d.Registry,
		probes:   d.Probes,
		logger:   logger.With("component", "orchestrator"),
		now:      time.Now,
	}
}

// HandleAction performs action for the agent that owns token.
//
// Identity resolution failures of any cause are reported as
// model.ErrNotFound. Skill ids are checked in order and the first unknown
// one aborts the call before the registry is contacted.
func (s *Service) HandleAction(ctx context.Context, token string, action model.EventType, ts time.Time, skillIDs []string) (*model.ActivityResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", model.ErrUnauthenticated)
	}

	ident, err := s.identity.Me(ctx, token)
	if err != nil {
		s.logger.Warn("identity resolution failed", "action", action, "error", err)
		return nil, fmt.Errorf("%w: agent not found", model.ErrNotFound)
	}
	userID, err := ident.UserID()
	if err != nil {
		s.logger.Warn("identity has non-numeric id", "id", ident.ID)
		return nil, fmt.Errorf("%w: agent not found", model.ErrNotFound)
	}

	skills, err := s.validateSkills(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	agent, err := s.registry.GetAgentByUser(ctx, token, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: agent not found", model.ErrNotFound)
		}
		return nil, fmt.Errorf("resolve agent: %w", err)
	}

	return s.forward(ctx, token, model.AgentEvent{
		AgentID:   agent.ID,
		EventType: action,
		Timestamp: ts,
		Skills:    skills,
	})
}

// AdminActivity forwards an event on behalf of agentID. There is no identity
// step; the caller is not the subject.
func (s *Service) AdminActivity(ctx context.Context, token string, agentID int64, action model.EventType, ts time.Time, skillIDs []string) (*model.ActivityResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", model.ErrUnauthenticated)
	}
	if agentID <= 0 {
		return nil, fmt.Errorf("%w: agent_id must be positive", model.ErrInvalidInput)
	}
	if strings.TrimSpace(string(action)) == "" {
		return nil, fmt.Errorf("%w: action is required", model.ErrInvalidInput)
	}
	skills, err := s.validateSkills(ctx, skillIDs)
	if err != nil {
		return nil, err
	}
	return s.forward(ctx, token, model.AgentEvent{
		AgentID:   agentID,
		EventType: action,
		Timestamp: ts,
		Skills:    skills,
	})
}

// UpdateSkills replaces agentID's skill set. It is forwarded as a
// SKILLS_UPDATE event stamped now; the registry stores the skills and then
// rejects the event type, which this path treats as success.
func (s *Service) UpdateSkills(ctx context.Context, token string, agentID int64, skillIDs []string) (*model.SkillsResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", model.ErrUnauthenticated)
	}
	if agentID <= 0 {
		return nil, fmt.Errorf("%w: agent_id must be positive", model.ErrInvalidInput)
	}
	if len(skillIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one skill id is required", model.ErrInvalidInput)
	}
	skills, err := s.validateSkills(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	_, err = s.registry.ApplyEvent(ctx, token, model.AgentEvent{
		AgentID:   agentID,
		EventType: model.EventSkillsUpdate,
		Timestamp: s.now().UTC(),
		Skills:    skills,
	})
	if err != nil && !(errors.Is(err, model.ErrUnknownEventType) && model.SkillsApplied(err)) {
		s.logger.Warn("skill update rejected by registry", "agent_id", agentID, "error", err)
		return nil, err
	}

	s.logger.Info("agent skills updated", "agent_id", agentID, "skills", skills)
	return &model.SkillsResult{AgentID: agentID, UpdatedSkills: skills}, nil
}

// Ready runs every probe and reports per-dependency results.
func (s *Service) Ready(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(s.probes))
	for name := range s.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	ok := true
	for _, name := range names {
		if err := s.probes[name](ctx); err != nil {
			checks[name] = err.Error()
			ok = false
			continue
		}
		checks[name] = "ok"
	}
	return checks, ok
}

// validateSkills checks each id against the catalog, failing on the first
// one that is non-numeric or unknown. It returns the ids in canonical form.
func (s *Service) validateSkills(ctx context.Context, skillIDs []string) ([]string, error) {
	out := make([]string, 0, len(skillIDs))
	for _, raw := range skillIDs {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: Skill with ID %s does not exist", model.ErrInvalidSkill, raw)
		}
		if _, err := s.catalog.GetSkill(ctx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, fmt.Errorf("%w: Skill with ID %s does not exist", model.ErrInvalidSkill, raw)
			}
			return nil, fmt.Errorf("lookup skill %d: %w", id, err)
		}
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out, nil
}

// forward sends ev to the registry once and echoes the request on success.
func (s *Service) forward(ctx context.Context, token string, ev model.AgentEvent) (*model.ActivityResult, error) {
	if _, err := s.registry.ApplyEvent(ctx, token, ev); err != nil {
		s.logger.Warn("registry rejected event",
			"agent_id", ev.AgentID, "event_type", ev.EventType, "kind", model.KindOf(err), "error", err)
		return nil, err
	}
	s.logger.Info("event forwarded", "agent_id", ev.AgentID, "event_type", ev.EventType)
	return &model.ActivityResult{
		AgentID:   ev.AgentID,
		Action:    ev.EventType,
		Timestamp: ev.Timestamp,
		Skills:    ev.Skills,
	}, nil
}
