package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/identity"
	"github.com/alfredjeanlab/switchboard/internal/model"
)

// IdentityServer serves the identity service's HTTP API.
type IdentityServer struct {
	base
	svc *identity.Service
}

func NewIdentityServer(svc *identity.Service, verifier auth.TokenVerifier, logger *slog.Logger) *IdentityServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityServer{
		base: base{service: "identity", verifier: verifier, logger: logger},
		svc:  svc,
	}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *IdentityServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /v1/auth/validate", s.handleValidate)
	mux.HandleFunc("GET /v1/auth/me", s.authenticated("", s.handleMe))
	mux.HandleFunc("GET /v1/auth/users", s.authenticated(model.RoleAdmin, s.handleListUsers))
	mux.HandleFunc("GET /v1/auth/users/{id}", s.authenticated(model.RoleAdmin, s.handleGetUser))
	mux.HandleFunc("DELETE /v1/auth/users/{id}", s.authenticated(model.RoleAdmin, s.handleDeactivateUser))
	s.registerHealth(mux, s.Ready)
	return wrap(s.logger, mux)
}

// Ready reports whether the backing database answers.
func (s *IdentityServer) Ready(ctx context.Context) (map[string]string, bool) {
	return dependency("database", s.svc.Ready)(ctx)
}

// handleLogin handles POST /v1/auth/login.
func (s *IdentityServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRegister handles POST /v1/auth/register. Anyone may register an
// agent account; creating an admin takes an admin token.
func (s *IdentityServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in identity.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.IsAdmin {
		claims, err := s.optionalClaims(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if claims == nil || claims.Role != model.RoleAdmin {
			s.fail(w, r, fmt.Errorf("%w: only admins can create admin users", model.ErrForbidden))
			return
		}
	}
	u, err := s.svc.Register(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// handleValidate handles POST /v1/auth/validate.
func (s *IdentityServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.svc.Validate(in.Token)})
}

// handleMe handles GET /v1/auth/me.
func (s *IdentityServer) handleMe(w http.ResponseWriter, r *http.Request) {
	a, _ := fromContext(r.Context())
	id, err := s.svc.Me(r.Context(), a.token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// handleListUsers handles GET /v1/auth/users.
func (s *IdentityServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// handleGetUser handles GET /v1/auth/users/{id}.
func (s *IdentityServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.svc.GetUser(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleDeactivateUser handles DELETE /v1/auth/users/{id}.
func (s *IdentityServer) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.svc.DeactivateUser(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
