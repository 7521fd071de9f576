package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/catalog"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/orchestrator"
)

// InteractionServer serves the interaction API: agent actions, admin
// actions and the skill catalog. Every response is an envelope.
type InteractionServer struct {
	base
	orch    *orchestrator.Service
	catalog *catalog.Service
}

func NewInteractionServer(orch *orchestrator.Service, cat *catalog.Service, verifier auth.TokenVerifier, logger *slog.Logger) *InteractionServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionServer{
		base:    base{service: "interaction", verifier: verifier, logger: logger, envelope: true},
		orch:    orch,
		catalog: cat,
	}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *InteractionServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/interactions/{action}", s.authenticated(model.RoleAgent, s.handleAction))
	mux.HandleFunc("POST /v1/admin/agents/activity", s.authenticated(model.RoleAdmin, s.handleAdminActivity))
	mux.HandleFunc("PUT /v1/admin/agents/{agent_id}/skills", s.authenticated(model.RoleAdmin, s.handleAdminSkills))
	mux.HandleFunc("GET /v1/skills", s.authenticated("", s.handleListSkills))
	mux.HandleFunc("GET /v1/skills/{id}", s.authenticated("", s.handleGetSkill))
	mux.HandleFunc("POST /v1/skills", s.authenticated(model.RoleAdmin, s.handleCreateSkill))
	mux.HandleFunc("PUT /v1/skills/{id}", s.authenticated(model.RoleAdmin, s.handleUpdateSkill))
	mux.HandleFunc("PATCH /v1/skills/{id}/toggle", s.authenticated(model.RoleAdmin, s.handleToggleSkill))
	mux.HandleFunc("DELETE /v1/skills/{id}", s.authenticated(model.RoleAdmin, s.handleDeleteSkill))
	s.registerHealth(mux, s.Ready)
	return wrap(s.logger, mux)
}

// Ready runs the orchestrator's dependency probes.
func (s *InteractionServer) Ready(ctx context.Context) (map[string]string, bool) {
	return s.orch.Ready(ctx)
}

type actionInput struct {
	Timestamp time.Time `json:"timestamp"`
	SkillIDs  []string  `json:"skill_ids"`
}

// handleAction handles PUT /v1/interactions/{action}.
func (s *InteractionServer) handleAction(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	ev, ok := model.EventForAction(action)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: unknown action %q", model.ErrNotFound, action))
		return
	}
	var in actionInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Timestamp.IsZero() {
		s.fail(w, r, fmt.Errorf("%w: timestamp is required", model.ErrInvalidInput))
		return
	}

	a, _ := fromContext(r.Context())
	res, err := s.orch.HandleAction(r.Context(), a.token, ev, in.Timestamp, in.SkillIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Agent activity updated successfully", res)
}

// handleAdminActivity handles POST /v1/admin/agents/activity.
func (s *InteractionServer) handleAdminActivity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AgentID   int64           `json:"agent_id"`
		Action    model.EventType `json:"action"`
		Timestamp time.Time       `json:"timestamp"`
		SkillIDs  []string        `json:"skill_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Timestamp.IsZero() {
		s.fail(w, r, fmt.Errorf("%w: timestamp is required", model.ErrInvalidInput))
		return
	}

	a, _ := fromContext(r.Context())
	res, err := s.orch.AdminActivity(r.Context(), a.token, in.AgentID, in.Action, in.Timestamp, in.SkillIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Agent activity updated successfully", res)
}

// handleAdminSkills handles PUT /v1/admin/agents/{agent_id}/skills. The body
// is a bare JSON array of skill ids.
func (s *InteractionServer) handleAdminSkills(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathInt64(r, "agent_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var skillIDs []string
	if err := decodeJSON(r, &skillIDs); err != nil {
		s.fail(w, r, err)
		return
	}

	a, _ := fromContext(r.Context())
	res, err := s.orch.UpdateSkills(r.Context(), a.token, agentID, skillIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Agent skills updated successfully", res)
}

// handleListSkills handles GET /v1/skills.
func (s *InteractionServer) handleListSkills(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	skills, err := s.catalog.ListSkills(r.Context(), activeOnly)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if skills == nil {
		skills = []*model.Skill{}
	}
	writeEnvelope(w, http.StatusOK, fmt.Sprintf("Retrieved %d skills", len(skills)), &skills)
}

// handleGetSkill handles GET /v1/skills/{id}.
func (s *InteractionServer) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	skill, err := s.catalog.GetSkill(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Skill retrieved successfully", skill)
}

// handleCreateSkill handles POST /v1/skills.
func (s *InteractionServer) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var in catalog.SkillInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	skill, err := s.catalog.CreateSkill(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, "Skill created successfully", skill)
}

// handleUpdateSkill handles PUT /v1/skills/{id}.
func (s *InteractionServer) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var in catalog.SkillInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	skill, err := s.catalog.UpdateSkill(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Skill updated successfully", skill)
}

// handleToggleSkill handles PATCH /v1/skills/{id}/toggle.
func (s *InteractionServer) handleToggleSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	skill, err := s.catalog.ToggleSkill(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Skill status toggled successfully", skill)
}

// handleDeleteSkill handles DELETE /v1/skills/{id}.
func (s *InteractionServer) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.catalog.DeleteSkill(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeEnvelope[struct{}](w, http.StatusOK, "Skill deleted successfully", nil)
}
