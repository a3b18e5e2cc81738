// Package ingest merges freshly scraped creators and their content into the
// store.
//
// Every write is an upsert, so re-running an import on unchanged input leaves
// the store unchanged apart from scraped_at. A record the store rejects as
// incomplete (no key) or orphaned (unknown owner) is skipped and counted;
// any other store failure aborts the import.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"creatorscope/internal/logging"
	"creatorscope/internal/store"
	"creatorscope/internal/telemetry"
)

// Writer is the subset of *store.Store the reconciler needs.
type Writer interface {
	UpsertCreator(ctx context.Context, c store.Creator) error
	UpsertPost(ctx context.Context, owner string, p store.Post) error
	UpsertChannel(ctx context.Context, c store.Channel) error
	UpsertVideo(ctx context.Context, channelID string, v store.Video) error
}

// InstagramRecord is one creator with its latest posts.
type InstagramRecord struct {
	Creator store.Creator `json:"creator"`
	Posts   []store.Post  `json:"posts"`
}

// ChannelRecord is one YouTube channel with its videos.
type ChannelRecord struct {
	Channel store.Channel `json:"profile"`
	Videos  []store.Video `json:"videos"`
}

// Summary counts what an import wrote and skipped.
type Summary struct {
	Creators       int `json:"creators"`
	Items          int `json:"items"`
	FailedCreators int `json:"failed_creators"`
	FailedItems    int `json:"failed_items"`
}

// Add accumulates other into s.
func (s *Summary) Add(other Summary) {
	s.Creators += other.Creators
	s.Items += other.Items
	s.FailedCreators += other.FailedCreators
	s.FailedItems += other.FailedItems
}

// Reconciler writes records through a Writer.
type Reconciler struct {
	store   Writer
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewReconciler builds a reconciler. A nil logger discards output.
func NewReconciler(w Writer, logger *slog.Logger, metrics *telemetry.Metrics) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{store: w, logger: logger, metrics: metrics}
}

// ImportInstagram upserts each creator, then each of its posts.
func (r *Reconciler) ImportInstagram(ctx context.Context, records []InstagramRecord) (Summary, error) {
	var summary Summary
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := r.store.UpsertCreator(ctx, rec.Creator); err != nil {
			if !skippable(err) {
				return summary, fmt.Errorf("import creator %s: %w", rec.Creator.Username, err)
			}
			summary.FailedCreators++
			r.warnSkipped(store.PlatformInstagram, rec.Creator.Username, "creator", err)
		} else {
			summary.Creators++
		}
		for _, post := range rec.Posts {
			if err := r.store.UpsertPost(ctx, rec.Creator.Username, post); err != nil {
				if !skippable(err) {
					return summary, fmt.Errorf("import post %s: %w", post.ID, err)
				}
				summary.FailedItems++
				r.warnSkipped(store.PlatformInstagram, rec.Creator.Username, "post", err)
				continue
			}
			summary.Items++
		}
	}
	r.record(store.PlatformInstagram, "creator", "post", summary)
	return summary, nil
}

// ImportYouTube upserts each channel, then each of its videos.
func (r *Reconciler) ImportYouTube(ctx context.Context, records []ChannelRecord) (Summary, error) {
	var summary Summary
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := r.store.UpsertChannel(ctx, rec.Channel); err != nil {
			if !skippable(err) {
				return summary, fmt.Errorf("import channel %s: %w", rec.Channel.ChannelID, err)
			}
			summary.FailedCreators++
			r.warnSkipped(store.PlatformYouTube, rec.Channel.ChannelID, "channel", err)
		} else {
			summary.Creators++
		}
		for _, video := range rec.Videos {
			if err := r.store.UpsertVideo(ctx, rec.Channel.ChannelID, video); err != nil {
				if !skippable(err) {
					return summary, fmt.Errorf("import video %s: %w", video.VideoID, err)
				}
				summary.FailedItems++
				r.warnSkipped(store.PlatformYouTube, rec.Channel.ChannelID, "video", err)
				continue
			}
			summary.Items++
		}
	}
	r.record(store.PlatformYouTube, "channel", "video", summary)
	return summary, nil
}

func skippable(err error) bool {
	return errors.Is(err, store.ErrUnknownCreator) || errors.Is(err, store.ErrMissingKey)
}

func (r *Reconciler) warnSkipped(platform store.Platform, creatorID, kind string, err error) {
	logging.WarnWithContext(r.logger, "record skipped", "ingest_record_skipped",
		logging.String(logging.FieldPlatform, string(platform)),
		logging.String(logging.FieldCreatorID, creatorID),
		logging.String("kind", kind),
		logging.String(logging.FieldErrorHint, "record lacks a key or its creator is not stored"),
		logging.String(logging.FieldImpact, "record not imported"),
		logging.Error(err),
	)
}

func (r *Reconciler) record(platform store.Platform, creatorKind, itemKind string, summary Summary) {
	r.metrics.AddIngested(string(platform), creatorKind, summary.Creators)
	r.metrics.AddIngested(string(platform), itemKind, summary.Items)
	r.logger.Info("import finished",
		logging.String(logging.FieldEventType, "ingest_finished"),
		logging.String(logging.FieldPlatform, string(platform)),
		logging.Int("creators", summary.Creators),
		logging.Int("items", summary.Items),
		logging.Int("failed_creators", summary.FailedCreators),
		logging.Int("failed_items", summary.FailedItems),
	)
}
