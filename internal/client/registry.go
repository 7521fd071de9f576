package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// RegistryHTTPClient implements RegistryClient over the registry's REST API.
type RegistryHTTPClient struct {
	httpBase
}

var _ RegistryClient = (*RegistryHTTPClient)(nil)

// NewRegistryHTTPClient targets the registry at baseURL
// (e.g. "http://localhost:8082").
func NewRegistryHTTPClient(baseURL string) *RegistryHTTPClient {
	return &RegistryHTTPClient{httpBase: newHTTPBase(baseURL)}
}

// applyEventResponse is the registry's acknowledgment of an applied event.
type applyEventResponse struct {
	Message string       `json:"message"`
	Agent   *model.Agent `json:"agent"`
}

func (c *RegistryHTTPClient) ApplyEvent(ctx context.Context, token string, ev model.AgentEvent) (*model.Agent, error) {
	if ev.Skills == nil {
		ev.Skills = []string{}
	}
	ev.Timestamp = ev.Timestamp.UTC()
	var resp applyEventResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/events", token, ev, &resp); err != nil {
		return nil, err
	}
	return resp.Agent, nil
}

func (c *RegistryHTTPClient) CreateAgent(ctx context.Context, token string, req *CreateAgentRequest) (*model.Agent, error) {
	var a model.Agent
	if err := c.doJSON(ctx, http.MethodPost, "/v1/agents", token, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *RegistryHTTPClient) GetAgent(ctx context.Context, token string, id int64) (*model.Agent, error) {
	var a model.Agent
	if err := c.doJSON(ctx, http.MethodGet, "/v1/agents/"+strconv.FormatInt(id, 10), token, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *RegistryHTTPClient) GetAgentByUser(ctx context.Context, token string, userID int64) (*model.Agent, error) {
	var a model.Agent
	if err := c.doJSON(ctx, http.MethodGet, "/v1/agents/by-user/"+strconv.FormatInt(userID, 10), token, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *RegistryHTTPClient) ListAgents(ctx context.Context, token string) ([]*model.Agent, error) {
	var agents []*model.Agent
	if err := c.doJSON(ctx, http.MethodGet, "/v1/agents", token, nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *RegistryHTTPClient) Health(ctx context.Context, probe string) (*HealthStatus, error) {
	return c.health(ctx, probe)
}
