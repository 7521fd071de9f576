package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// InteractionHTTPClient implements InteractionClient. Every response is a
// model.Envelope; failures surface as *APIError.
type InteractionHTTPClient struct {
	httpBase
}

var _ InteractionClient = (*InteractionHTTPClient)(nil)

func NewInteractionHTTPClient(baseURL string) *InteractionHTTPClient {
	return &InteractionHTTPClient{httpBase: newHTTPBase(baseURL)}
}

func (c *InteractionHTTPClient) Act(ctx context.Context, token, action string, req *ActionRequest) (*model.ActivityResult, error) {
	if _, ok := model.EventForAction(action); !ok {
		return nil, fmt.Errorf("%w: unknown action %q", model.ErrInvalidInput, action)
	}
	var env model.Envelope[model.ActivityResult]
	if err := c.doJSON(ctx, http.MethodPut, "/v1/interactions/"+action, token, req, &env); err != nil {
		return nil, err
	}
	return envelopeData(&env)
}

func (c *InteractionHTTPClient) AdminActivity(ctx context.Context, token string, req *AdminActivityRequest) (*model.ActivityResult, error) {
	var env model.Envelope[model.ActivityResult]
	if err := c.doJSON(ctx, http.MethodPost, "/v1/admin/agents/activity", token, req, &env); err != nil {
		return nil, err
	}
	return envelopeData(&env)
}

func (c *InteractionHTTPClient) UpdateAgentSkills(ctx context.Context, token string, agentID int64, skillIDs []string) (*model.SkillsResult, error) {
	if skillIDs == nil {
		skillIDs = []string{}
	}
	var env model.Envelope[model.SkillsResult]
	path := "/v1/admin/agents/" + strconv.FormatInt(agentID, 10) + "/skills"
	if err := c.doJSON(ctx, http.MethodPut, path, token, skillIDs, &env); err != nil {
		return nil, err
	}
	return envelopeData(&env)
}

func (c *InteractionHTTPClient) ListSkills(ctx context.Context, token string, activeOnly bool) ([]*model.Skill, error) {
	path := "/v1/skills"
	if activeOnly {
		path += "?" + url.Values{"active_only": {"true"}}.Encode()
	}
	var env model.Envelope[[]*model.Skill]
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &env); err != nil {
		return nil, err
	}
	skills, err := envelopeData(&env)
	if err != nil {
		return nil, err
	}
	return *skills, nil
}

func (c *InteractionHTTPClient) GetSkill(ctx context.Context, token string, id int64) (*model.Skill, error) {
	return c.skillCall(ctx, http.MethodGet, skillPath(id), token, nil)
}

func (c *InteractionHTTPClient) CreateSkill(ctx context.Context, token string, req *SkillRequest) (*model.Skill, error) {
	return c.skillCall(ctx, http.MethodPost, "/v1/skills", token, req)
}

func (c *InteractionHTTPClient) UpdateSkill(ctx context.Context, token string, id int64, req *SkillRequest) (*model.Skill, error) {
	return c.skillCall(ctx, http.MethodPut, skillPath(id), token, req)
}

func (c *InteractionHTTPClient) ToggleSkill(ctx context.Context, token string, id int64) (*model.Skill, error) {
	return c.skillCall(ctx, http.MethodPatch, skillPath(id)+"/toggle", token, nil)
}

func (c *InteractionHTTPClient) DeleteSkill(ctx context.Context, token string, id int64) error {
	var env model.Envelope[struct{}]
	if err := c.doJSON(ctx, http.MethodDelete, skillPath(id), token, nil, &env); err != nil {
		return err
	}
	if !env.Success {
		return &APIError{StatusCode: http.StatusOK, Kind: env.Kind, Message: env.Message}
	}
	return nil
}

func (c *InteractionHTTPClient) Health(ctx context.Context, probe string) (*HealthStatus, error) {
	return c.health(ctx, probe)
}

func (c *InteractionHTTPClient) skillCall(ctx context.Context, method, path, token string, body any) (*model.Skill, error) {
	var env model.Envelope[model.Skill]
	if err := c.doJSON(ctx, method, path, token, body, &env); err != nil {
		return nil, err
	}
	return envelopeData(&env)
}

func skillPath(id int64) string {
	return "/v1/skills/" + strconv.FormatInt(id, 10)
}
