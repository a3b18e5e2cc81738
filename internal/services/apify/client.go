package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"creatorscope/internal/logging"
	"creatorscope/internal/services"
	"creatorscope/internal/telemetry"
)

const (
	defaultBaseURL      = "https://api.apify.com"
	defaultPollInterval = 5 * time.Second
	defaultRunTimeout   = 30 * time.Minute
	datasetPageSize     = 1000
)

// Run states reported by the platform.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusTimingOut = "TIMING-OUT"
	StatusTimedOut  = "TIMED-OUT"
	StatusAborting  = "ABORTING"
	StatusAborted   = "ABORTED"
)

// ErrRunFailed reports an actor run that ended in a non-success state.
var ErrRunFailed = errors.New("apify run failed")

// Config captures the settings required to talk to Apify.
type Config struct {
	Token        string
	BaseURL      string
	PollInterval time.Duration
	RunTimeout   time.Duration
	Retry        services.RetryConfig
}

// Run is the subset of the actor run object the scrapers need.
type Run struct {
	ID               string `json:"id"`
	ActorID          string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Terminal reports whether the run has stopped.
func (r Run) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusAborted:
		return true
	default:
		return false
	}
}

// Client starts actor runs, waits for them and pages through their datasets.
type Client struct {
	cfg     Config
	http    *services.HTTPClient
	base    *http.Client
	logger  *slog.Logger
	metrics *telemetry.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithLogger attaches a logger for run progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records terminal run states.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient constructs a client from cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	c := &Client{
		cfg:    cfg,
		base:   &http.Client{Timeout: 2 * time.Minute},
		logger: logging.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = services.NewHTTPClient(c.base, cfg.Retry)
	return c
}

// Call runs actor with input, waits for it to succeed and returns every
// dataset item as raw JSON.
func (c *Client) Call(ctx context.Context, actor string, input any) ([]json.RawMessage, error) {
	started := time.Now()
	run, err := c.StartRun(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("apify run started",
		logging.String("actor", actor),
		logging.String("run_id", run.ID),
	)
	run, err = c.WaitForRun(ctx, run)
	if err != nil {
		return nil, err
	}
	items, err := c.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, err
	}
	c.logger.Info("apify run finished",
		logging.String(logging.FieldEventType, "apify_run_finished"),
		logging.String("actor", actor),
		logging.String("run_id", run.ID),
		logging.Int("items", len(items)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return items, nil
}

// StartRun submits a run of actor ("owner/name" or an actor id).
func (c *Client) StartRun(ctx context.Context, actor string, input any) (Run, error) {
	if c.cfg.Token == "" {
		return Run{}, services.Wrap(services.ErrConfiguration, "apify", "start run", "api token required", nil)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Run{}, services.Wrap(services.ErrValidation, "apify", "start run", "actor required", nil)
	}
	if input == nil {
		input = map[string]any{}
	}
	body, err := json.Marshal(input)
	if err != nil {
		return Run{}, fmt.Errorf("apify start run: encode input: %w", err)
	}
	query := url.Values{}
	query.Set("timeout", strconv.Itoa(int(c.cfg.RunTimeout.Seconds())))
	endpoint := c.endpoint(query, "v2", "acts", actorPath(actor), "runs")

	resp, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)
		return req, nil
	})
	if err != nil {
		return Run{}, services.Wrap(services.ErrExternalService, "apify", "start run", actor, err)
	}
	run, err := decodeRun(resp.Body)
	if err != nil {
		return Run{}, fmt.Errorf("apify start run %s: %w", actor, err)
	}
	return run, nil
}

// WaitForRun polls until run reaches a terminal state or the run timeout
// elapses. Non-success terminal states fail with ErrRunFailed.
func (c *Client) WaitForRun(ctx context.Context, run Run) (Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RunTimeout)
	defer cancel()

	for !run.Terminal() {
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return run, services.Wrap(services.ErrTimeout, "apify", "wait for run", run.ID, err)
			}
			return run, err
		}
		next, err := c.GetRun(ctx, run.ID)
		if err != nil {
			return run, err
		}
		run = next
	}
	c.metrics.ObserveApifyRun(run.ActorID, run.Status)
	if run.Status != StatusSucceeded {
		return run, fmt.Errorf("%w: run %s ended with status %s", ErrRunFailed, run.ID, run.Status)
	}
	return run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (Run, error) {
	endpoint := c.endpoint(nil, "v2", "actor-runs", runID)
	resp, err := c.http.Do(ctx, c.getRequest(endpoint))
	if err != nil {
		return Run{}, services.Wrap(services.ErrExternalService, "apify", "get run", runID, err)
	}
	run, err := decodeRun(resp.Body)
	if err != nil {
		return Run{}, fmt.Errorf("apify get run %s: %w", runID, err)
	}
	return run, nil
}

// DatasetItems returns every clean item of a dataset, paging through it
// until the reported total is covered or a page comes back empty.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error) {
	datasetID = strings.TrimSpace(datasetID)
	if datasetID == "" {
		return nil, services.Wrap(services.ErrValidation, "apify", "list dataset", "dataset id required", nil)
	}
	items := []json.RawMessage{}
	for offset := 0; ; offset += datasetPageSize {
		query := url.Values{}
		query.Set("clean", "true")
		query.Set("format", "json")
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(datasetPageSize))
		endpoint := c.endpoint(query, "v2", "datasets", datasetID, "items")

		resp, err := c.http.Do(ctx, c.getRequest(endpoint))
		if err != nil {
			return nil, services.Wrap(services.ErrExternalService, "apify", "list dataset", datasetID, err)
		}
		var page []json.RawMessage
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("apify list dataset %s: decode items: %w", datasetID, err)
		}
		items = append(items, page...)
		if len(page) == 0 {
			return items, nil
		}
		// clean=true may return short pages while later offsets still hold items.
		if total, ok := paginationTotal(resp.Header); ok && offset+datasetPageSize >= total {
			return items, nil
		}
	}
}

func paginationTotal(header http.Header) (int, bool) {
	raw := strings.TrimSpace(header.Get("X-Apify-Pagination-Total"))
	if raw == "" {
		return 0, false
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}

func (c *Client) getRequest(endpoint string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		c.authorize(req)
		return req, nil
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	endpoint := c.cfg.BaseURL + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// actorPath converts "owner/name" into the "owner~name" form used in URLs.
func actorPath(actor string) string {
	return strings.ReplaceAll(actor, "/", "~")
}

func decodeRun(body []byte) (Run, error) {
	var envelope struct {
		Data Run `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Run{}, fmt.Errorf("decode run: %w", err)
	}
	if envelope.Data.ID == "" {
		return Run{}, errors.New("decode run: missing run id")
	}
	return envelope.Data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
