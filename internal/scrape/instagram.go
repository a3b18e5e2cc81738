package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"creatorscope/internal/config"
	"creatorscope/internal/logging"
	"creatorscope/internal/runner"
)

// ErrNoBatchSucceeded reports a scrape whose every actor batch failed.
var ErrNoBatchSucceeded = errors.New("no scrape batch succeeded")

// InstagramScraper discovers creators posting under the configured hashtags.
type InstagramScraper struct {
	cfg  config.Instagram
	deps Deps
}

// NewInstagram builds an Instagram scraper.
func NewInstagram(cfg config.Instagram, deps Deps) *InstagramScraper {
	return &InstagramScraper{cfg: cfg, deps: deps}
}

// Run executes the hashtag and profile actors, then reconciles the profiles
// and caches their avatars.
func (s *InstagramScraper) Run(ctx context.Context) (Report, error) {
	logger := s.deps.logger("instagram")
	start := time.Now()
	var report Report

	logger.Info("hashtag scrape started",
		logging.String(logging.FieldEventType, "hashtag_scrape_started"),
		logging.Any("hashtags", s.cfg.Hashtags),
		logging.Int("results_limit", s.cfg.ResultsLimit),
	)
	items, err := s.deps.Actors.Call(ctx, s.cfg.HashtagActor, map[string]any{
		"hashtags":     s.cfg.Hashtags,
		"resultsLimit": s.cfg.ResultsLimit,
	})
	if err != nil {
		return report, fmt.Errorf("hashtag scrape: %w", err)
	}
	report.RawItems = len(items)
	s.deps.saveSnapshot(HashtagPostsFile, items)

	posts, dropped := decodeItems[InstagramPost](items)
	report.Dropped += dropped
	warnDropped(logger, "post", dropped)
	usernames := UniqueOwners(posts)
	report.Discovered = len(usernames)
	logger.Info("hashtag scrape finished",
		logging.String(logging.FieldEventType, "hashtag_scrape_finished"),
		logging.Int("posts", len(items)),
		logging.Int("creators", len(usernames)),
	)
	if len(usernames) == 0 {
		return report, nil
	}

	chunks := chunk(usernames, s.cfg.ProfileBatchSize)
	results := make([][]json.RawMessage, len(chunks))
	tasks := make([]runner.Task, len(chunks))
	for i, names := range chunks {
		tasks[i] = runner.Task{
			Name: fmt.Sprintf("profiles %d/%d", i+1, len(chunks)),
			Run: func(ctx context.Context) error {
				out, err := s.deps.Actors.Call(ctx, s.cfg.ProfileActor, map[string]any{
					"usernames":    names,
					"resultsLimit": 1,
				})
				results[i] = out
				return err
			},
		}
	}
	outcomes := runner.Run(ctx, tasks, runner.Options{
		Concurrency: s.cfg.ProfileConcurrency,
		Pool:        "instagram_profiles",
		Logger:      logger,
		Metrics:     s.deps.Metrics,
	})
	succeeded, failed, skipped := runner.Counts(outcomes)
	report.FailedBatches = failed
	report.SkippedBatches = skipped

	var raw []json.RawMessage
	for _, out := range results {
		raw = append(raw, out...)
	}
	if raw == nil {
		raw = []json.RawMessage{}
	}
	s.deps.saveSnapshot(CreatorProfilesFile, raw)

	profiles, dropped := decodeItems[InstagramProfile](raw)
	report.Dropped += dropped
	warnDropped(logger, "profile", dropped)
	records := InstagramRecords(profiles)
	report.Scraped = len(records)

	summary, err := s.deps.Importer.ImportInstagram(ctx, records)
	report.Import = summary
	if err != nil {
		return report, fmt.Errorf("import instagram profiles: %w", err)
	}
	if s.deps.Avatars != nil {
		report.Avatars = s.deps.Avatars.DownloadAll(ctx, InstagramAvatarRequests(profiles))
	}

	logger.Info("instagram scrape finished",
		logging.String(logging.FieldEventType, "instagram_scrape_finished"),
		logging.Int("creators", report.Scraped),
		logging.Int("failed_batches", failed),
		logging.Int("skipped_batches", skipped),
		logging.Duration("duration", time.Since(start)),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if succeeded == 0 && len(chunks) > 0 {
		return report, fmt.Errorf("instagram profiles: %w", ErrNoBatchSucceeded)
	}
	return report, nil
}
