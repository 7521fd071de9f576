package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// DefaultTimeout bounds a single request when the caller's context has no
// deadline of its own.
const DefaultTimeout = 10 * time.Second

// APIError represents an error response from a service.
type APIError struct {
	StatusCode int
	Kind       model.Kind
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the sentinel for the response's kind, falling back to the
// status code when the body carried none.
func (e *APIError) Unwrap() error {
	if err := model.ErrorForKind(e.Kind); err != nil {
		return err
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return model.ErrInvalidInput
	case http.StatusUnauthorized:
		return model.ErrUnauthenticated
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return model.ErrUnavailable
	}
	return nil
}

// errorBody accepts both the plain error shape and a failed envelope.
type errorBody struct {
	Error         string     `json:"error"`
	Message       string     `json:"message"`
	Kind          model.Kind `json:"kind"`
	SkillsApplied bool       `json:"skills_applied"`
}

// httpBase holds what every HTTP client shares.
type httpBase struct {
	baseURL    string
	httpClient *http.Client
}

func newHTTPBase(baseURL string) httpBase {
	return httpBase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
// Transport failures wrap model.ErrUnavailable.
func (c *httpBase) doJSON(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", model.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", model.ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var eb errorBody
	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if json.Unmarshal(body, &eb) == nil {
		apiErr.Kind = eb.Kind
		switch {
		case eb.Error != "":
			apiErr.Message = eb.Error
		case eb.Message != "":
			apiErr.Message = eb.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	if eb.SkillsApplied {
		return &model.SkillsAppliedError{Err: apiErr}
	}
	return apiErr
}

// health probes /v1/health/{probe}. A 503 with a status body is reported as
// that status, not as an error.
func (c *httpBase) health(ctx context.Context, probe string) (*HealthStatus, error) {
	var hs HealthStatus
	err := c.doJSON(ctx, http.MethodGet, "/v1/health/"+probe, "", nil, &hs)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		if json.Unmarshal([]byte(apiErr.Message), &hs) == nil && hs.Status != "" {
			return &hs, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &hs, nil
}

// envelopeData decodes a successful envelope's data.
func envelopeData[T any](env *model.Envelope[T]) (*T, error) {
	if !env.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Kind: env.Kind, Message: env.Message}
	}
	if env.Data == nil {
		return nil, errors.New("response envelope has no data")
	}
	return env.Data, nil
}
