// Package identity authenticates users and resolves bearer tokens to the
// identities they were issued for.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alfredjeanlab/switchboard/internal/auth"
	"github.com/alfredjeanlab/switchboard/internal/model"
	"github.com/alfredjeanlab/switchboard/internal/store"
)

const minPasswordLen = 6

var errBadCredentials = fmt.Errorf("%w: invalid username or password", model.ErrUnauthenticated)

// Service implements the identity operations.
type Service struct {
	store    store.UserStore
	issuer   *auth.Issuer
	verifier auth.TokenVerifier
	logger   *slog.Logger
	cost     int
}

func New(s store.UserStore, issuer *auth.Issuer, verifier auth.TokenVerifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    s,
		issuer:   issuer,
		verifier: verifier,
		logger:   logger.With("component", "identity"),
		cost:     bcrypt.DefaultCost,
	}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// RegisterInput carries a new user's fields.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Login checks credentials and issues a token. Unknown users, deactivated
// users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("login failed", "username", username, "reason", "unknown user")
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		s.logger.Warn("login failed", "username", username, "reason", "deactivated")
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login failed", "username", username, "reason", "password mismatch")
		return nil, errBadCredentials
	}

	token, exp, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role())
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Register creates a user. Usernames and emails are unique.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Username == "":
		return nil, fmt.Errorf("%w: username is required", model.ErrInvalidInput)
	case len(in.Password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, minPasswordLen)
	case in.Email == "":
		return nil, fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", model.ErrInvalidInput, in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsAdmin:      in.IsAdmin,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", model.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username, "role", u.Role())
	return u, nil
}

// EnsureAdmin registers an admin account unless username already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get user: %w", err)
	}
	_, err = s.Register(ctx, RegisterInput{
		Username: username,
		Password: password,
		Email:    username + "@localhost",
		IsAdmin:  true,
	})
	return err
}

// Validate reports whether token is currently valid.
func (s *Service) Validate(token string) bool {
	_, err := s.verifier.Verify(token)
	return err == nil
}

// Me resolves token to the identity it was issued for. A valid token whose
// user no longer exists or was deactivated fails with model.ErrNotFound.
func (s *Service) Me(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject %q", model.ErrUnauthenticated, claims.Subject)
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: user %d is deactivated", model.ErrNotFound, id)
	}
	return claims.Identity(), nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// ListUsers returns active users ordered by username.
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeactivateUser soft-deletes a user; their tokens stop resolving.
func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	if err := s.store.DeactivateUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user %d", model.ErrNotFound, id)
		}
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// Ready reports whether the backing store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
