// Package scrape discovers creators through Apify actors, saves the raw
// actor output as JSON snapshots and reconciles it into the store.
//
// Instagram discovery runs a hashtag actor, then a profile actor over the
// post owners. YouTube discovery runs one search over all configured queries,
// then scrapes the discovered channels in batches and keeps only channels in
// the configured subscriber range.
package scrape

import (
	"context"
	"encoding/json"
	"log/slog"

	"creatorscope/internal/avatars"
	"creatorscope/internal/ingest"
	"creatorscope/internal/logging"
	"creatorscope/internal/telemetry"
)

// Snapshot file names written to the data directory.
const (
	HashtagPostsFile      = "hashtag_posts.json"
	CreatorProfilesFile   = "creator_profiles.json"
	YouTubeSearchFile     = "yt_search_results.json"
	YouTubeProfilesFile   = "yt_channel_profiles.json"
	channelScrapeMaxItems = 20
)

// ActorClient runs an actor to completion and returns its dataset items.
type ActorClient interface {
	Call(ctx context.Context, actor string, input any) ([]json.RawMessage, error)
}

// AvatarFetcher caches profile images.
type AvatarFetcher interface {
	DownloadAll(ctx context.Context, reqs []avatars.Request) avatars.Summary
}

// Importer reconciles normalized records into the store.
type Importer interface {
	ImportInstagram(ctx context.Context, records []ingest.InstagramRecord) (ingest.Summary, error)
	ImportYouTube(ctx context.Context, records []ingest.ChannelRecord) (ingest.Summary, error)
}

// Deps bundles the collaborators shared by both scrapers.
type Deps struct {
	Actors   ActorClient
	Importer Importer
	Avatars  AvatarFetcher
	// SnapshotPath maps a snapshot file name to its location. Nil disables snapshots.
	SnapshotPath func(name string) string
	Logger       *slog.Logger
	Metrics      *telemetry.Metrics
}

func (d Deps) logger(component string) *slog.Logger {
	return logging.NewComponentLogger(d.Logger, component)
}

// warnDropped logs dataset items of kind that did not decode.
func warnDropped(logger *slog.Logger, kind string, dropped int) {
	if dropped <= 0 {
		return
	}
	logger.Warn("undecodable "+kind+" items dropped",
		logging.String(logging.FieldEventType, kind+"_decode_failed"),
		logging.Int("dropped", dropped),
	)
}

// Report summarizes one scrape.
type Report struct {
	RawItems       int             `json:"raw_items"`
	Discovered     int             `json:"discovered"`
	Scraped        int             `json:"scraped"`
	OutOfRange     int             `json:"out_of_range,omitempty"`
	Dropped        int             `json:"dropped,omitempty"`
	FailedBatches  int             `json:"failed_batches"`
	SkippedBatches int             `json:"skipped_batches"`
	Import         ingest.Summary  `json:"import"`
	Avatars        avatars.Summary `json:"avatars"`
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
