package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const defaultMaxBodyBytes = 64 << 20

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	const limit = 200
	if len(body) > limit {
		body = body[:limit] + "..."
	}
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so DefaultShouldRetry rejects it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RetryConfig configures the retrying client.
type RetryConfig struct {
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	MaxBodyBytes int64

	// ShouldRetry decides whether a failed attempt is retried.
	ShouldRetry func(resp *Response, err error) bool
}

// DefaultRetryConfig returns three retries with 500ms to 10s backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		ShouldRetry: DefaultShouldRetry,
	}
}

// DefaultShouldRetry retries transport errors, server errors (5xx), request
// timeouts (408), rate limits (429) and validation failures. Cancellation and
// PermanentError are never retried.
func DefaultShouldRetry(resp *Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		var permanent *PermanentError
		if errors.As(err, &permanent) {
			return false
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return retryableStatus(statusErr.StatusCode)
		}
		return true
	}
	if resp == nil {
		return true
	}
	return retryableStatus(resp.StatusCode)
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func normalizeRetryConfig(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = DefaultShouldRetry
	}
	return cfg
}

// HTTPClient executes requests through a failsafe-go retry policy.
type HTTPClient struct {
	client   *http.Client
	executor failsafe.Executor[*Response]
	maxBody  int64
}

// NewHTTPClient wraps client (http.DefaultClient when nil) with retries.
func NewHTTPClient(client *http.Client, cfg RetryConfig) *HTTPClient {
	cfg = normalizeRetryConfig(cfg)
	if client == nil {
		client = http.DefaultClient
	}
	retry := retrypolicy.NewBuilder[*Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(cfg.ShouldRetry).
		ReturnLastFailure().
		Build()
	return &HTTPClient{
		client:   client,
		executor: failsafe.With[*Response](retry),
		maxBody:  cfg.MaxBodyBytes,
	}
}

// Do builds a request with newRequest for every attempt and returns the first
// 2xx response. Non-2xx responses surface as *StatusError.
func (c *HTTPClient) Do(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	return c.DoValidated(ctx, newRequest, nil)
}

// DoValidated is Do with a per-attempt check of the 2xx response. A validate
// error fails the attempt and is retried unless wrapped with Permanent.
func (c *HTTPClient) DoValidated(ctx context.Context, newRequest func(ctx context.Context) (*http.Request, error), validate func(*Response) error) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.executor.WithContext(ctx).Get(func() (*Response, error) {
		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return out, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if validate != nil {
			if err := validate(out); err != nil {
				return out, err
			}
		}
		return out, nil
	})
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
