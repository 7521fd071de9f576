package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/registry"
)

// RegistryServer serves the agent registry's HTTP API.
type RegistryServer struct {
	base
	svc *registry.Service
}

func NewRegistryServer(svc *registry.Service, verifier auth.TokenVerifier, logger *slog.Logger) *RegistryServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryServer{
		base: base{service: "registry", verifier: verifier, logger: logger},
		svc:  svc,
	}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *RegistryServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/events", s.authenticated("", s.handleApplyEvent))
	mux.HandleFunc("POST /v1/agents", s.authenticated(model.RoleAdmin, s.handleCreateAgent))
	mux.HandleFunc("GET /v1/agents", s.authenticated("", s.handleListAgents))
	mux.HandleFunc("GET /v1/agents/{id}", s.authenticated("", s.handleGetAgent))
	mux.HandleFunc("GET /v1/agents/by-user/{user_id}", s.authenticated("", s.handleGetAgentByUser))
	s.registerHealth(mux, s.Ready)
	return wrap(s.logger, mux)
}

// Ready reports whether the backing database answers.
func (s *RegistryServer) Ready(ctx context.Context) (map[string]string, bool) {
	return dependency("database", s.svc.Ready)(ctx)
}

// handleApplyEvent handles POST /v1/events.
func (s *RegistryServer) handleApplyEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.AgentEvent
	if err := decodeJSON(r, &ev); err != nil {
		s.fail(w, r, err)
		return
	}
	if ev.Timestamp.IsZero() {
		s.fail(w, r, fmt.Errorf("%w: timestamp is required", model.ErrInvalidInput))
		return
	}

	agent, err := s.svc.ApplyEvent(r.Context(), ev)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "event processed",
		"agent":   agent,
	})
}

// handleCreateAgent handles POST /v1/agents.
func (s *RegistryServer) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID       int64  `json:"user_id"`
		InitialState string `json:"initial_state"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.UserID <= 0 {
		s.fail(w, r, fmt.Errorf("%w: user_id must be positive", model.ErrInvalidInput))
		return
	}
	initial, err := model.ParseAgentState(in.InitialState)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	a, _ := fromContext(r.Context())
	agent, err := s.svc.RegisterAgent(r.Context(), a.token, in.UserID, initial)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

// handleListAgents handles GET /v1/agents.
func (s *RegistryServer) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.svc.ListAgents(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if agents == nil {
		agents = []*model.Agent{}
	}
	writeJSON(w, http.StatusOK, agents)
}

// handleGetAgent handles GET /v1/agents/{id}.
func (s *RegistryServer) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	agent, err := s.svc.GetAgent(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// handleGetAgentByUser handles GET /v1/agents/by-user/{user_id}.
func (s *RegistryServer) handleGetAgentByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	agent, err := s.svc.GetAgentByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}
