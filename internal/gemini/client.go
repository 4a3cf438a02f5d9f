// Package gemini is a minimal client for the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// ErrEmptyResponse is returned when the API answers without any text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// APIError is an error object returned by the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// retryable reports whether another attempt may succeed.
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configures a Client.
type Options struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	FallbackModel string
}

// Client calls generateContent with bounded retries and an optional fallback
// model.
type Client struct {
	apiKey        string
	baseURL       string
	maxRetries    int
	backoff       time.Duration
	fallbackModel string
	httpClient    *http.Client
	log           *slog.Logger
}

// New creates a Client. Zero option values fall back to sensible defaults.
func New(opts Options, log *slog.Logger) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		maxRetries:    max(opts.MaxRetries, 0),
		backoff:       backoff,
		fallbackModel: opts.FallbackModel,
		httpClient:    &http.Client{Timeout: timeout},
		log:           log,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// Generate sends prompt to model and returns the text of the first candidate.
// Transient failures are retried up to MaxRetries times; if the model still
// fails and a different fallback model is configured, it is tried once.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	text, err := c.generateWithRetry(ctx, model, prompt)
	if err == nil {
		return text, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == model || ctx.Err() != nil {
		return "", err
	}

	c.log.Warn("gemini model failed, trying fallback",
		"model", model, "fallback", c.fallbackModel, "error", err)
	text, fbErr := c.generateOnce(ctx, c.fallbackModel, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("%w (fallback %s: %v)", err, c.fallbackModel, fbErr)
	}
	return text, nil
}

func (c *Client) generateWithRetry(ctx context.Context, model, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.backoff
			c.log.Info("retrying gemini request", "model", model, "attempt", attempt+1, "wait", wait.String())
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := c.generateOnce(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}
	// Transport errors.
	return true
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: encode request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %s: %w", model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Message: string(raw)}
		}
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if gr.Error != nil || resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		if gr.Error != nil {
			apiErr.Status = gr.Error.Status
			apiErr.Message = gr.Error.Message
		}
		return "", apiErr
	}

	if len(gr.Candidates) == 0 {
		if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, gr.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
