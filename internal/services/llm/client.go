package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"creatorscope/internal/services"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
	defaultTimeout  = 120 * time.Second
	defaultAttempts = 3
)

// Config holds endpoint and model settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// Client talks to an OpenAI-compatible chat completions endpoint in JSON mode.
type Client struct {
	cfg     Config
	timeout time.Duration
	base    *http.Client
	retry   services.RetryConfig
	http    *services.HTTPClient
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithRetryMaxAttempts sets the total attempts per request (default 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.MaxRetries = max(attempts, 1) - 1
	}
}

// WithRetryBackoff sets the exponential backoff bounds.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.BaseDelay = baseDelay
		c.retry.MaxDelay = maxDelay
	}
}

// NewClient builds a client. Blank BaseURL and Model fall back to the OpenAI
// endpoint and gpt-4o-mini.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retry := services.DefaultRetryConfig()
	retry.MaxRetries = defaultAttempts - 1

	c := &Client{cfg: cfg, timeout: timeout, retry: retry}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = &http.Client{Timeout: timeout}
	} else if c.base.Timeout > 0 {
		c.timeout = c.base.Timeout
	}
	c.http = services.NewHTTPClient(c.base, c.retry)
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON sends one system and one user message and returns the model's
// JSON payload as text.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New("llm complete: system prompt required")
	case userPrompt == "":
		return "", errors.New("llm complete: user prompt required")
	case c.cfg.APIKey == "":
		return "", services.Wrap(services.ErrConfiguration, "llm", "complete", "api key required", nil)
	}
	return c.complete(ctx, "llm complete", c.request(systemPrompt, userPrompt, c.cfg.Temperature))
}

// HealthCheck asks the model for {"ok":true} to confirm the key, endpoint and
// model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "llm", "health", "api key required", nil)
	}
	req := c.request("You must respond with JSON only.", `Respond with {"ok":true}`, 0)
	content, err := c.complete(ctx, "llm health", req)
	if err != nil {
		return err
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &reply); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) request(system, user string, temperature float64) chatRequest {
	return chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
}

func (c *Client) newRequest(body []byte) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.Referer != "" {
			req.Header.Set("HTTP-Referer", c.cfg.Referer)
		}
		if c.cfg.Title != "" {
			req.Header.Set("X-Title", c.cfg.Title)
		}
		return req, nil
	}
}

// complete posts req and returns the first non-empty payload. A reply with no
// content is retried like a transient failure; undecodable envelopes and API
// errors are permanent.
func (c *Client) complete(ctx context.Context, op string, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}
	var content string
	_, err = c.http.DoValidated(ctx, c.newRequest(body), func(resp *services.Response) error {
		var reply chatResponse
		if err := json.Unmarshal(resp.Body, &reply); err != nil {
			return services.Permanent(fmt.Errorf("%s: decode response: %w", op, err))
		}
		if reply.Error != nil {
			return services.Permanent(fmt.Errorf("%s: api error: %s", op, strings.TrimSpace(reply.Error.Message)))
		}
		if len(reply.Choices) == 0 {
			return fmt.Errorf("%s: empty choices", op)
		}
		payload, finishReason, refusal := reply.content()
		if payload == "" {
			return &emptyContentError{op: op, finishReason: finishReason, refusal: refusal, snippet: payloadSnippet(string(resp.Body))}
		}
		content = payload
		return nil
	})
	if err == nil {
		return content, nil
	}
	var statusErr *services.StatusError
	switch {
	case errors.As(err, &statusErr):
		return "", services.Wrap(services.ErrExternalService, "llm", op, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "llm", op, "timeout="+c.timeout.String(), err)
	default:
		return "", err
	}
}
