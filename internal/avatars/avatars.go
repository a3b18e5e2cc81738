// Package avatars caches creator profile images on disk as <key>.jpg.
//
// A cached file is never re-fetched. Downloads run through the bounded runner;
// one failed image never stops the others.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"creatorscope/internal/fileutil"
	"creatorscope/internal/logging"
	"creatorscope/internal/runner"
	"creatorscope/internal/services"
	"creatorscope/internal/telemetry"
	"creatorscope/internal/textutil"
)

const (
	// DefaultConcurrency bounds simultaneous downloads.
	DefaultConcurrency = 10
	defaultTimeout     = 30 * time.Second
)

// ErrNotImage reports a payload whose magic bytes are not an image.
var ErrNotImage = errors.New("avatar payload is not an image")

// Request names one image to cache.
type Request struct {
	Key string
	URL string
}

// Result describes the outcome of a single download.
type Result string

const (
	ResultDownloaded Result = "downloaded"
	ResultCached     Result = "cached"
	ResultNoURL      Result = "no_url"
)

// Summary counts outcomes of DownloadAll.
type Summary struct {
	Downloaded int `json:"downloaded"`
	Cached     int `json:"cached"`
	NoURL      int `json:"no_url"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Downloader fetches avatars into one directory.
type Downloader struct {
	dir         string
	client      *services.HTTPClient
	concurrency int
	logger      *slog.Logger
	metrics     *telemetry.Metrics
}

// Options tunes a Downloader.
type Options struct {
	HTTPClient  *http.Client
	Retry       *services.RetryConfig
	Concurrency int
	Timeout     time.Duration
	Logger      *slog.Logger
	Metrics     *telemetry.Metrics
}

// New creates a Downloader writing into dir.
func New(dir string, opts Options) *Downloader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retry := services.RetryConfig{MaxRetries: 1, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second}
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		dir:         dir,
		client:      services.NewHTTPClient(httpClient, retry),
		concurrency: concurrency,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Dir returns the cache directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// Path returns the cache file for key.
func (d *Downloader) Path(key string) string {
	return filepath.Join(d.dir, textutil.SanitizeFileName(key)+".jpg")
}

// Download caches one avatar. An empty URL and an existing file are no-op
// successes.
func (d *Downloader) Download(ctx context.Context, req Request) (Result, error) {
	key := strings.TrimSpace(req.Key)
	if textutil.SanitizeFileName(key) == "" {
		return "", services.Wrap(services.ErrValidation, "avatars", "download", "empty key", nil)
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return ResultNoURL, nil
	}
	dest := d.Path(key)
	if fileutil.Exists(dest) {
		return ResultCached, nil
	}

	resp, err := d.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return "", fmt.Errorf("download avatar %s: %w", key, err)
	}
	if !filetype.IsImage(resp.Body) {
		return "", fmt.Errorf("download avatar %s: %w", key, ErrNotImage)
	}
	if err := fileutil.WriteFileAtomic(dest, resp.Body, 0o644); err != nil {
		return "", fmt.Errorf("store avatar %s: %w", key, err)
	}
	return ResultDownloaded, nil
}

// DownloadAll fetches every request with bounded concurrency.
func (d *Downloader) DownloadAll(ctx context.Context, reqs []Request) Summary {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Warn("avatar directory unavailable",
			logging.String(logging.FieldEventType, "avatar_dir_failed"),
			logging.String("dir", d.dir),
			logging.Error(err),
		)
	}
	results := make([]Result, len(reqs))
	tasks := make([]runner.Task, len(reqs))
	for i, req := range reqs {
		tasks[i] = runner.Task{
			Name: req.Key,
			Run: func(ctx context.Context) error {
				result, err := d.Download(ctx, req)
				results[i] = result
				return err
			},
		}
	}
	outcomes := runner.Run(ctx, tasks, runner.Options{
		Concurrency: d.concurrency,
		Pool:        "avatars",
		Logger:      d.logger,
		Metrics:     d.metrics,
	})

	var summary Summary
	for i, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			summary.Skipped++
		case outcome.Err != nil:
			summary.Failed++
			d.metrics.ObserveAvatar("failed")
		default:
			switch results[i] {
			case ResultDownloaded:
				summary.Downloaded++
			case ResultCached:
				summary.Cached++
			case ResultNoURL:
				summary.NoURL++
			}
			d.metrics.ObserveAvatar(string(results[i]))
		}
	}
	d.logger.Info("avatar downloads finished",
		logging.String(logging.FieldEventType, "avatars_finished"),
		logging.String("dir", d.dir),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("cached", summary.Cached),
		logging.Int("failed", summary.Failed),
	)
	return summary
}
