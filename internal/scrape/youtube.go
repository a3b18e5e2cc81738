package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creatorscope/internal/config"
	"creatorscope/internal/ingest"
	"creatorscope/internal/logging"
	"creatorscope/internal/runner"
)

// YouTubeScraper discovers channels through search and scrapes their videos.
type YouTubeScraper struct {
	cfg  config.YouTube
	deps Deps
}

// NewYouTube builds a YouTube scraper.
func NewYouTube(cfg config.YouTube, deps Deps) *YouTubeScraper {
	return &YouTubeScraper{cfg: cfg, deps: deps}
}

type startURL struct {
	URL string `json:"url"`
}

func (s *YouTubeScraper) actorInput(urls []string, maxResults int) map[string]any {
	start := make([]startURL, len(urls))
	for i, u := range urls {
		start[i] = startURL{URL: u}
	}
	return map[string]any{
		"startUrls":        start,
		"maxResults":       maxResults,
		"maxResultsShorts": 0,
		"maxResultStreams": 0,
	}
}

// Run searches every configured query in one actor call, scrapes the
// discovered channels in batches and keeps channels in the subscriber range.
func (s *YouTubeScraper) Run(ctx context.Context) (Report, error) {
	logger := s.deps.logger("youtube")
	start := time.Now()
	var report Report

	searches := make([]string, len(s.cfg.SearchQueries))
	for i, q := range s.cfg.SearchQueries {
		searches[i] = SearchURL(q)
	}
	logger.Info("youtube search started",
		logging.String(logging.FieldEventType, "youtube_search_started"),
		logging.Int("queries", len(searches)),
		logging.Int64("min_subscribers", s.cfg.MinSubscribers),
		logging.Int64("max_subscribers", s.cfg.MaxSubscribers),
		logging.Int("max_channels", s.cfg.MaxChannels),
	)
	items, err := s.deps.Actors.Call(ctx, s.cfg.ChannelActor, s.actorInput(searches, s.cfg.ResultsPerQuery))
	if err != nil {
		return report, fmt.Errorf("youtube search: %w", err)
	}
	report.RawItems = len(items)
	s.deps.saveSnapshot(YouTubeSearchFile, items)

	found, dropped := decodeItems[YouTubeItem](items)
	report.Dropped += dropped
	warnDropped(logger, "search", dropped)
	channels := ExtractChannels(found, s.cfg.MaxChannels)
	report.Discovered = len(channels)
	logger.Info("youtube search finished",
		logging.String(logging.FieldEventType, "youtube_search_finished"),
		logging.Int("videos", len(items)),
		logging.Int("channels", len(channels)),
	)
	if len(channels) == 0 {
		return report, nil
	}

	urls := make([]string, len(channels))
	for i, c := range channels {
		urls[i] = c.URL
	}
	batches := chunk(urls, s.cfg.ChannelBatchSize)
	results := make([][]json.RawMessage, len(batches))
	tasks := make([]runner.Task, len(batches))
	for i, batch := range batches {
		tasks[i] = runner.Task{
			Name: fmt.Sprintf("channels %d/%d", i+1, len(batches)),
			Run: func(ctx context.Context) error {
				out, err := s.deps.Actors.Call(ctx, s.cfg.ChannelActor, s.actorInput(batch, channelScrapeMaxItems))
				results[i] = out
				return err
			},
		}
	}
	outcomes := runner.Run(ctx, tasks, runner.Options{
		Concurrency: s.cfg.ChannelConcurrency,
		Pool:        "youtube_channels",
		Logger:      logger,
		Metrics:     s.deps.Metrics,
	})
	succeeded, failed, skipped := runner.Counts(outcomes)
	report.FailedBatches = failed
	report.SkippedBatches = skipped

	var scraped []YouTubeItem
	batchDropped := 0
	for _, out := range results {
		batchItems, n := decodeItems[YouTubeItem](out)
		scraped = append(scraped, batchItems...)
		batchDropped += n
	}
	report.Dropped += batchDropped
	warnDropped(logger, "channel", batchDropped)
	grouped := GroupYouTubeItems(scraped)
	kept := make([]ingest.ChannelRecord, 0, len(grouped))
	for _, rec := range grouped {
		if !InSubscriberRange(rec.Channel, s.cfg.MinSubscribers, s.cfg.MaxSubscribers) {
			report.OutOfRange++
			continue
		}
		kept = append(kept, rec)
	}
	if report.OutOfRange > 0 {
		logger.Info("channels outside subscriber range skipped",
			logging.String(logging.FieldEventType, "channels_out_of_range"),
			logging.Int("skipped", report.OutOfRange),
			logging.Int64("min_subscribers", s.cfg.MinSubscribers),
			logging.Int64("max_subscribers", s.cfg.MaxSubscribers),
		)
	}
	report.Scraped = len(kept)
	s.deps.saveSnapshot(YouTubeProfilesFile, kept)

	summary, err := s.deps.Importer.ImportYouTube(ctx, kept)
	report.Import = summary
	if err != nil {
		return report, fmt.Errorf("import youtube channels: %w", err)
	}
	if s.deps.Avatars != nil {
		report.Avatars = s.deps.Avatars.DownloadAll(ctx, ChannelAvatarRequests(kept))
	}

	logger.Info("youtube scrape finished",
		logging.String(logging.FieldEventType, "youtube_scrape_finished"),
		logging.Int("channels", report.Scraped),
		logging.Int("videos", summary.Items),
		logging.Int("failed_batches", failed),
		logging.Int("skipped_batches", skipped),
		logging.Duration("duration", time.Since(start)),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if succeeded == 0 && len(batches) > 0 {
		return report, fmt.Errorf("youtube channels: %w", ErrNoBatchSucceeded)
	}
	return report, nil
}
