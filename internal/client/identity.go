package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// IdentityHTTPClient implements IdentityClient over the identity REST API.
type IdentityHTTPClient struct {
	httpBase
}

var _ IdentityClient = (*IdentityHTTPClient)(nil)

func NewIdentityHTTPClient(baseURL string) *IdentityHTTPClient {
	return &IdentityHTTPClient{httpBase: newHTTPBase(baseURL)}
}

func (c *IdentityHTTPClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := &LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *IdentityHTTPClient) Register(ctx context.Context, token string, req *RegisterRequest) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", token, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *IdentityHTTPClient) Validate(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	body := map[string]string{"token": token}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/validate", "", body, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Me resolves token to its identity.
func (c *IdentityHTTPClient) Me(ctx context.Context, token string) (*model.Identity, error) {
	var id model.Identity
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/me", token, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// GetUser looks a user up by id. The caller must be an admin.
func (c *IdentityHTTPClient) GetUser(ctx context.Context, token string, id int64) (*model.User, error) {
	var u model.User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/users/"+strconv.FormatInt(id, 10), token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *IdentityHTTPClient) ListUsers(ctx context.Context, token string) ([]*model.User, error) {
	var users []*model.User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *IdentityHTTPClient) DeactivateUser(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/auth/users/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (c *IdentityHTTPClient) Health(ctx context.Context, probe string) (*HealthStatus, error) {
	return c.health(ctx, probe)
}
