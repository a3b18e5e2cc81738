package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"creatorscope/internal/derive"
)

const channelColumns = "c.channel_id, c.channel_name, c.handle, c.description, c.subscribers, c.total_views, c.video_count, c.is_verified, c.channel_url, c.thumbnail_url, c.country, c.joined_date, c.scraped_at"

const videoColumns = "video_id, channel_id, title, description, url, views, likes, comments, duration, published_at, thumbnail_url"

// UpsertChannel inserts or replaces every mutable field of a YouTube channel
// and refreshes scraped_at.
func (s *Store) UpsertChannel(ctx context.Context, c Channel) error {
	id := strings.TrimSpace(c.ChannelID)
	if id == "" {
		return fmt.Errorf("upsert channel: %w", ErrMissingKey)
	}
	_, err := s.execWithRetry(ctx, `
		INSERT INTO yt_creators (channel_id, channel_name, handle, description, subscribers, total_views,
			video_count, is_verified, channel_url, thumbnail_url, country, joined_date, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			channel_name = excluded.channel_name,
			handle = excluded.handle,
			description = excluded.description,
			subscribers = excluded.subscribers,
			total_views = excluded.total_views,
			video_count = excluded.video_count,
			is_verified = excluded.is_verified,
			channel_url = excluded.channel_url,
			thumbnail_url = excluded.thumbnail_url,
			country = excluded.country,
			joined_date = excluded.joined_date,
			scraped_at = excluded.scraped_at`,
		id,
		nullableString(c.ChannelName),
		nullableString(c.Handle),
		nullableString(c.Description),
		c.Subscribers,
		c.TotalViews,
		c.VideoCount,
		boolToInt(c.IsVerified),
		nullableString(c.ChannelURL),
		nullableString(c.ThumbnailURL),
		nullableString(c.Country),
		nullableString(c.JoinedDate),
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert channel %s: %w", id, err)
	}
	return nil
}

// UpsertVideo inserts or replaces a video owned by channelID. A video whose
// channel is not stored fails with ErrUnknownCreator.
func (s *Store) UpsertVideo(ctx context.Context, channelID string, v Video) error {
	id := strings.TrimSpace(v.VideoID)
	if id == "" {
		return fmt.Errorf("upsert video: %w", ErrMissingKey)
	}
	channelID = strings.TrimSpace(channelID)
	_, err := s.execWithRetry(ctx, `
		INSERT INTO yt_videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			title = excluded.title,
			description = excluded.description,
			url = excluded.url,
			views = excluded.views,
			likes = excluded.likes,
			comments = excluded.comments,
			duration = excluded.duration,
			published_at = excluded.published_at,
			thumbnail_url = excluded.thumbnail_url`,
		id,
		channelID,
		nullableString(v.Title),
		nullableString(v.Description),
		nullableString(v.URL),
		v.Views,
		v.Likes,
		v.Comments,
		nullableString(v.Duration),
		nullableString(v.PublishedAt),
		nullableString(v.ThumbnailURL),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert video %s for %s: %w", id, channelID, ErrUnknownCreator)
		}
		return fmt.Errorf("upsert video %s: %w", id, err)
	}
	return nil
}

func scanChannel(scanner rowScanner, extra ...any) (Channel, error) {
	var (
		c            Channel
		name         sql.NullString
		handle       sql.NullString
		description  sql.NullString
		verified     int64
		channelURL   sql.NullString
		thumbnailURL sql.NullString
		country      sql.NullString
		joined       sql.NullString
		scrapedAtRaw sql.NullString
	)
	dest := []any{
		&c.ChannelID, &name, &handle, &description, &c.Subscribers, &c.TotalViews, &c.VideoCount,
		&verified, &channelURL, &thumbnailURL, &country, &joined, &scrapedAtRaw,
	}
	dest = append(dest, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return Channel{}, err
	}
	c.ChannelName = name.String
	c.Handle = handle.String
	c.Description = description.String
	c.IsVerified = verified != 0
	c.ChannelURL = channelURL.String
	c.ThumbnailURL = thumbnailURL.String
	c.Country = country.String
	c.JoinedDate = joined.String
	c.ScrapedAt = parseTimeOrZero(scrapedAtRaw.String)
	return c, nil
}

// GetChannel fetches one YouTube channel by id.
func (s *Store) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+channelColumns+" FROM yt_creators c WHERE c.channel_id = ?", strings.TrimSpace(channelID))
	c, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get channel %s: %w", channelID, err)
	}
	return &c, nil
}

// ListChannels returns every YouTube channel with view-based engagement, tier
// and niches computed from its stored videos, largest audience first.
func (s *Store) ListChannels(ctx context.Context) ([]ChannelMetrics, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+channelColumns+`,
			COALESCE(AVG(v.views), 0.0),
			COALESCE(AVG(v.likes), 0.0),
			COALESCE(AVG(v.comments), 0.0)
		FROM yt_creators c
		LEFT JOIN yt_videos v ON v.channel_id = c.channel_id
		GROUP BY c.channel_id
		ORDER BY c.subscribers DESC, c.channel_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	out := []ChannelMetrics{}
	for rows.Next() {
		var views, likes, comments float64
		c, err := scanChannel(rows, &views, &likes, &comments)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, ChannelMetrics{
			Channel:        c,
			AvgViews:       views,
			AvgLikes:       likes,
			AvgComments:    comments,
			EngagementRate: derive.ViewEngagementRate(likes, comments, views),
			Tier:           derive.TierFor(c.Subscribers, derive.YouTubeThresholds),
			Niches:         nonNil(derive.DetectNiches(c.Description)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}
	return out, nil
}

// ListVideos returns a channel's videos, newest first.
func (s *Store) ListVideos(ctx context.Context, channelID string) ([]Video, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM yt_videos WHERE channel_id = ? ORDER BY published_at DESC, video_id ASC",
		strings.TrimSpace(channelID))
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	out := []Video{}
	for rows.Next() {
		var (
			v                                 Video
			title, description, url, duration sql.NullString
			publishedAt, thumbnailURL         sql.NullString
		)
		if err := rows.Scan(&v.VideoID, &v.ChannelID, &title, &description, &url,
			&v.Views, &v.Likes, &v.Comments, &duration, &publishedAt, &thumbnailURL); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		v.Title = title.String
		v.Description = description.String
		v.URL = url.String
		v.Duration = duration.String
		v.PublishedAt = publishedAt.String
		v.ThumbnailURL = thumbnailURL.String
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return out, nil
}

// YouTubeStats aggregates audience figures across all channels.
func (s *Store) YouTubeStats(ctx context.Context) (YouTubeStats, error) {
	ctx = ensureContext(ctx)
	var stats YouTubeStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(subscribers), 0),
			COALESCE(CAST(ROUND(AVG(subscribers)) AS INTEGER), 0),
			COALESCE(MAX(subscribers), 0),
			COALESCE(SUM(is_verified), 0),
			COALESCE(SUM(video_count), 0)
		FROM yt_creators`).Scan(
		&stats.TotalChannels, &stats.TotalSubscribers, &stats.AvgSubscribers,
		&stats.MaxSubscribers, &stats.VerifiedCount, &stats.TotalVideos,
	)
	if err != nil {
		return YouTubeStats{}, fmt.Errorf("youtube stats: %w", err)
	}
	return stats, nil
}
