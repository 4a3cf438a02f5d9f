package mcp

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

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/models"
)

// HTTPClient implements Coach by calling the Aithlete REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the model credentials live on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Coach.
var _ Coach = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey may
// be empty when the server does not require one.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// statusError is a non-200 reply from the API.
type statusError struct {
	Path    string
	Status  int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.Path, e.Status, e.Message)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, &statusError{Path: path, Status: resp.StatusCode, Message: msg}
	}

	return respBody, nil
}

// GeneratePlan asks the server for a plan. A 400 becomes a *coach.RequestError
// and any other failure a *coach.GenerationError.
func (c *HTTPClient) GeneratePlan(ctx context.Context, req models.PlanRequest) (*coach.GeneratedPlan, error) {
	body, err := c.post(ctx, "/api/v1/plans", req)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Status == http.StatusBadRequest {
			return nil, &coach.RequestError{Err: errors.New(se.Message)}
		}
		return nil, &coach.GenerationError{Task: "plan", Err: err}
	}

	var resp struct {
		Plan json.RawMessage `json:"plan"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &coach.GenerationError{Task: "plan", Err: fmt.Errorf("httpclient: decode plan: %w", err)}
	}
	plan, err := models.ParsePlan(resp.Plan)
	if err != nil {
		return nil, &coach.GenerationError{Task: "plan", Err: err}
	}
	return &coach.GeneratedPlan{Raw: string(resp.Plan), Plan: plan}, nil
}

// Ask forwards a question to the server's advice endpoint.
func (c *HTTPClient) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", coach.ErrEmptyQuestion
	}

	body, err := c.post(ctx, "/api/v1/advice", map[string]string{"question": question})
	if err != nil {
		return "", &coach.GenerationError{Task: "advice", Err: err}
	}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &coach.GenerationError{Task: "advice", Err: fmt.Errorf("httpclient: decode answer: %w", err)}
	}
	return resp.Answer, nil
}
