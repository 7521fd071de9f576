// Package catalog manages the skill catalog that agent skill references are
// validated against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/switchboard/internal/events"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

// Service implements skill catalog operations.
type Service struct {
	store     store.SkillStore
	publisher events.Publisher
	logger    *slog.Logger
}

func New(s store.SkillStore, p events.Publisher, logger *slog.Logger) *Service {
	if p == nil {
		p = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, publisher: p, logger: logger.With("component", "catalog")}
}

// SkillInput carries the mutable fields of a skill.
type SkillInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (in *SkillInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	case len(in.Name) > maxNameLen:
		return fmt.Errorf("%w: name exceeds %d characters", model.ErrInvalidInput, maxNameLen)
	case len(in.Description) > maxDescriptionLen:
		return fmt.Errorf("%w: description exceeds %d characters", model.ErrInvalidInput, maxDescriptionLen)
	}
	return nil
}

// Seed inserts the default skills into an empty catalog.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.CountSkills(ctx)
	if err != nil {
		return fmt.Errorf("count skills: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, def := range model.DefaultSkills {
		sk := def
		if err := s.store.CreateSkill(ctx, &sk); err != nil {
			return fmt.Errorf("seed skill %s: %w", sk.Name, err)
		}
	}
	s.logger.Info("seeded skill catalog", "count", len(model.DefaultSkills))
	return nil
}

func (s *Service) ListSkills(ctx context.Context, activeOnly bool) ([]*model.Skill, error) {
	skills, err := s.store.ListSkills(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// GetSkill returns the skill with id regardless of its active flag.
func (s *Service) GetSkill(ctx context.Context, id int64) (*model.Skill, error) {
	sk, err := s.store.GetSkill(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: skill %d", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get skill %d: %w", id, err)
	}
	return sk, nil
}

func (s *Service) CreateSkill(ctx context.Context, in SkillInput) (*model.Skill, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	sk := &model.Skill{Name: in.Name, Description: in.Description, IsActive: true}
	if in.IsActive != nil {
		sk.IsActive = *in.IsActive
	}
	if err := s.store.CreateSkill(ctx, sk); err != nil {
		return nil, s.writeError(err, "create skill")
	}

	s.logger.Info("skill created", "skill_id", sk.ID, "name", sk.Name)
	s.publish(ctx, events.TopicSkillCreated, events.SkillChanged{Skill: sk})
	return sk, nil
}

// UpdateSkill replaces name and description. The active flag changes only
// when in.IsActive is set.
func (s *Service) UpdateSkill(ctx context.Context, id int64, in SkillInput) (*model.Skill, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sk, err := s.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(sk.Name, in.Name) {
		if err := s.checkNameFree(ctx, in.Name, id); err != nil {
			return nil, err
		}
	}

	sk.Name = in.Name
	sk.Description = in.Description
	if in.IsActive != nil {
		sk.IsActive = *in.IsActive
	}
	if err := s.store.UpdateSkill(ctx, sk); err != nil {
		return nil, s.writeError(err, "update skill")
	}

	s.publish(ctx, events.TopicSkillUpdated, events.SkillChanged{Skill: sk})
	return sk, nil
}

// ToggleSkill flips the active flag and returns the updated skill.
func (s *Service) ToggleSkill(ctx context.Context, id int64) (*model.Skill, error) {
	sk, err := s.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	sk.IsActive = !sk.IsActive
	if err := s.store.UpdateSkill(ctx, sk); err != nil {
		return nil, s.writeError(err, "toggle skill")
	}

	s.logger.Info("skill toggled", "skill_id", id, "is_active", sk.IsActive)
	s.publish(ctx, events.TopicSkillUpdated, events.SkillChanged{Skill: sk})
	return sk, nil
}

func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	if err := s.store.DeleteSkill(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: skill %d", model.ErrNotFound, id)
		}
		return fmt.Errorf("delete skill %d: %w", id, err)
	}
	s.logger.Info("skill deleted", "skill_id", id)
	s.publish(ctx, events.TopicSkillDeleted, events.SkillDeleted{SkillID: id})
	return nil
}

// Ready reports whether the backing store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// checkNameFree fails with model.ErrConflict when another skill (not self)
// already uses name, compared case-insensitively.
func (s *Service) checkNameFree(ctx context.Context, name string, self int64) error {
	existing, err := s.store.GetSkillByName(ctx, name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup skill name: %w", err)
	case existing.ID != self:
		return fmt.Errorf("%w: skill %q already exists", model.ErrConflict, existing.Name)
	}
	return nil
}

func (s *Service) writeError(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", model.ErrNotFound, err)
	}
	s.logger.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
