// Package registry owns agent state. ApplyEvent is the only operation that
// moves an agent between states; it runs the freshness guard, replaces the
// skill set when the event carries one, and persists the transition.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/events"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

// UserDirectory resolves identity records on behalf of a caller.
type UserDirectory interface {
	GetUser(ctx context.Context, token string, id int64) (*model.User, error)
}

// Service implements the agent registry.
type Service struct {
	store     store.AgentStore
	publisher events.Publisher
	users     UserDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// New returns a registry Service. users may be nil, in which case
// RegisterAgent reports the directory as unavailable.
func New(s store.AgentStore, p events.Publisher, users UserDirectory, logger *slog.Logger) *Service {
	if p == nil {
		p = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     s,
		publisher: p,
		users:     users,
		logger:    logger.With("component", "registry"),
		now:       time.Now,
	}
}

// ApplyEvent applies ev to its target agent and returns the updated agent.
//
// A non-empty ev.Skills replaces the stored skill set even when ev has no
// transition; that failure is returned as a *model.SkillsAppliedError.
func (s *Service) ApplyEvent(ctx context.Context, ev model.AgentEvent) (*model.Agent, error) {
	if err := model.CheckFreshness(ev.Timestamp, s.now()); err != nil {
		s.logger.Warn("stale event rejected",
			"agent_id", ev.AgentID, "event_type", ev.EventType, "timestamp", ev.Timestamp)
		return nil, err
	}

	a, err := s.getAgent(ctx, ev.AgentID)
	if err != nil {
		return nil, err
	}

	replaceSkills := len(ev.Skills) > 0
	if replaceSkills {
		a.Skills = slices.Clone(ev.Skills)
	}

	next, ok := model.NextState(a.State, ev.EventType, ev.Timestamp)
	if !ok {
		unknown := fmt.Errorf("%w: %q", model.ErrUnknownEventType, ev.EventType)
		if !replaceSkills {
			return nil, unknown
		}
		if err := s.store.UpdateAgentSkills(ctx, a.ID, a.Skills); err != nil {
			return nil, s.storeError(err, a.ID, "update agent skills")
		}
		s.logger.Info("agent skills replaced without transition",
			"agent_id", a.ID, "event_type", ev.EventType, "skills", a.Skills)
		s.publish(ctx, events.TopicAgentSkillsReplaced, events.AgentSkillsReplaced{AgentID: a.ID, Skills: a.Skills})
		return nil, &model.SkillsAppliedError{Err: unknown}
	}

	prev := a.State
	a.State = next
	a.LastStateChange = ev.Timestamp.UTC()
	if err := s.store.UpdateAgent(ctx, a); err != nil {
		return nil, s.storeError(err, a.ID, "update agent")
	}

	s.logger.Info("event applied",
		"event_type", ev.EventType, "agent_id", a.ID, "from", prev, "to", next)
	s.publish(ctx, events.TopicAgentStateChanged, events.AgentStateChanged{
		AgentID:   a.ID,
		From:      prev,
		To:        next,
		EventType: ev.EventType,
		At:        a.LastStateChange,
	})
	if replaceSkills {
		s.publish(ctx, events.TopicAgentSkillsReplaced, events.AgentSkillsReplaced{AgentID: a.ID, Skills: a.Skills})
	}
	return a, nil
}

// CreateAgent binds a new agent named name to userID. It fails with
// model.ErrConflict when the user already owns an agent.
func (s *Service) CreateAgent(ctx context.Context, userID int64, name string, initial model.AgentState) (*model.Agent, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	}
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user_id must be positive", model.ErrInvalidInput)
	}
	if initial == "" {
		initial = model.StateAvailable
	}
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: unknown agent state %q", model.ErrInvalidInput, initial)
	}

	a := &model.Agent{
		Name:            name,
		UserID:          userID,
		State:           initial,
		LastStateChange: s.now().UTC(),
		Skills:          []string{},
	}
	err := s.store.RunInTransaction(ctx, func(tx store.AgentStore) error {
		existing, err := tx.GetAgentByUser(ctx, userID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: user %d already has agent %d", model.ErrConflict, userID, existing.ID)
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("get agent by user: %w", err)
		}
		if err := tx.CreateAgent(ctx, a); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("%w: %v", model.ErrConflict, err)
			}
			return fmt.Errorf("create agent: %w", err)
		}
		return nil
	})
	if err != nil {
		if model.KindOf(err) == model.KindInternal {
			s.logger.Error("create agent failed", "user_id", userID, "error", err)
		}
		return nil, err
	}

	s.logger.Info("agent created", "agent_id", a.ID, "user_id", userID, "state", a.State)
	s.publish(ctx, events.TopicAgentCreated, events.AgentCreated{Agent: a})
	return a, nil
}

// RegisterAgent resolves userID through the user directory using the
// caller's token and creates an agent named after the username.
func (s *Service) RegisterAgent(ctx context.Context, token string, userID int64, initial model.AgentState) (*model.Agent, error) {
	if s.users == nil {
		return nil, fmt.Errorf("%w: no user directory configured", model.ErrUnavailable)
	}
	u, err := s.users.GetUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: user %d is deactivated", model.ErrNotFound, userID)
	}
	return s.CreateAgent(ctx, u.ID, u.Username, initial)
}

func (s *Service) GetAgent(ctx context.Context, id int64) (*model.Agent, error) {
	return s.getAgent(ctx, id)
}

func (s *Service) GetAgentByUser(ctx context.Context, userID int64) (*model.Agent, error) {
	a, err := s.store.GetAgentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no agent for user %d", model.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("get agent by user %d: %w", userID, err)
	}
	return a, nil
}

// ListAgents returns all agents ordered by name.
func (s *Service) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// Ready reports whether the backing store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) getAgent(ctx context.Context, id int64) (*model.Agent, error) {
	a, err := s.store.GetAgent(ctx, id)
	if err != nil {
		return nil, s.storeError(err, id, "get agent")
	}
	return a, nil
}

func (s *Service) storeError(err error, agentID int64, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("agent not found", "agent_id", agentID)
		return fmt.Errorf("%w: agent %d", model.ErrNotFound, agentID)
	}
	s.logger.Error(op+" failed", "agent_id", agentID, "error", err)
	return fmt.Errorf("%s %d: %w", op, agentID, err)
}

// publish emits an event. Failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
