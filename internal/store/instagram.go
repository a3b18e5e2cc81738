package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"creatorscope/internal/derive"
)

const creatorColumns = "c.username, c.id, c.full_name, c.biography, c.followers, c.following, c.posts_count, c.is_verified, c.is_business, c.business_category, c.private, c.profile_pic_url, c.profile_pic_url_hd, c.external_urls, c.scraped_at"

const postColumns = "id, creator_username, type, short_code, caption, hashtags, url, likes_count, comments_count, timestamp, display_url"

// UpsertCreator inserts or replaces every mutable field of an Instagram creator
// and refreshes scraped_at.
func (s *Store) UpsertCreator(ctx context.Context, c Creator) error {
	username := strings.TrimSpace(c.Username)
	if username == "" {
		return fmt.Errorf("upsert creator: %w", ErrMissingKey)
	}
	_, err := s.execWithRetry(ctx, `
		INSERT INTO creators (username, id, full_name, biography, followers, following, posts_count,
			is_verified, is_business, business_category, private, profile_pic_url, profile_pic_url_hd,
			external_urls, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			id = excluded.id,
			full_name = excluded.full_name,
			biography = excluded.biography,
			followers = excluded.followers,
			following = excluded.following,
			posts_count = excluded.posts_count,
			is_verified = excluded.is_verified,
			is_business = excluded.is_business,
			business_category = excluded.business_category,
			private = excluded.private,
			profile_pic_url = excluded.profile_pic_url,
			profile_pic_url_hd = excluded.profile_pic_url_hd,
			external_urls = excluded.external_urls,
			scraped_at = excluded.scraped_at`,
		username,
		nullableString(c.ID),
		nullableString(c.FullName),
		nullableString(c.Biography),
		c.Followers,
		c.Following,
		c.PostsCount,
		boolToInt(c.IsVerified),
		boolToInt(c.IsBusiness),
		nullableString(c.BusinessCategory),
		boolToInt(c.Private),
		nullableString(c.ProfilePicURL),
		nullableString(c.ProfilePicURLHD),
		encodeStrings(c.ExternalURLs),
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert creator %s: %w", username, err)
	}
	return nil
}

// UpsertPost inserts or replaces a post owned by owner. A post whose owner is
// not stored fails with ErrUnknownCreator.
func (s *Store) UpsertPost(ctx context.Context, owner string, p Post) error {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return fmt.Errorf("upsert post: %w", ErrMissingKey)
	}
	owner = strings.TrimSpace(owner)
	_, err := s.execWithRetry(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			creator_username = excluded.creator_username,
			type = excluded.type,
			short_code = excluded.short_code,
			caption = excluded.caption,
			hashtags = excluded.hashtags,
			url = excluded.url,
			likes_count = excluded.likes_count,
			comments_count = excluded.comments_count,
			timestamp = excluded.timestamp,
			display_url = excluded.display_url`,
		id,
		owner,
		nullableString(p.Type),
		nullableString(p.ShortCode),
		nullableString(p.Caption),
		encodeStrings(p.Hashtags),
		nullableString(p.URL),
		p.LikesCount,
		p.CommentsCount,
		nullableString(p.Timestamp),
		nullableString(p.DisplayURL),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert post %s for %s: %w", id, owner, ErrUnknownCreator)
		}
		return fmt.Errorf("upsert post %s: %w", id, err)
	}
	return nil
}

func scanCreator(scanner rowScanner, extra ...any) (Creator, error) {
	var (
		c            Creator
		id           sql.NullString
		fullName     sql.NullString
		biography    sql.NullString
		verified     int64
		business     int64
		category     sql.NullString
		private      int64
		picURL       sql.NullString
		picURLHD     sql.NullString
		externalURLs sql.NullString
		scrapedAtRaw sql.NullString
	)
	dest := []any{
		&c.Username, &id, &fullName, &biography, &c.Followers, &c.Following, &c.PostsCount,
		&verified, &business, &category, &private, &picURL, &picURLHD, &externalURLs, &scrapedAtRaw,
	}
	dest = append(dest, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return Creator{}, err
	}
	c.ID = id.String
	c.FullName = fullName.String
	c.Biography = biography.String
	c.IsVerified = verified != 0
	c.IsBusiness = business != 0
	c.BusinessCategory = category.String
	c.Private = private != 0
	c.ProfilePicURL = picURL.String
	c.ProfilePicURLHD = picURLHD.String
	c.ExternalURLs = decodeStrings(externalURLs.String)
	c.ScrapedAt = parseTimeOrZero(scrapedAtRaw.String)
	return c, nil
}

// GetCreator fetches one Instagram creator by username.
func (s *Store) GetCreator(ctx context.Context, username string) (*Creator, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+creatorColumns+" FROM creators c WHERE c.username = ?", strings.TrimSpace(username))
	c, err := scanCreator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("creator %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get creator %s: %w", username, err)
	}
	return &c, nil
}

// ListCreators returns every Instagram creator with engagement, tier and
// niches computed from its stored posts, largest audience first.
func (s *Store) ListCreators(ctx context.Context) ([]CreatorMetrics, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+creatorColumns+`,
			COALESCE(SUM(p.likes_count), 0),
			COALESCE(SUM(p.comments_count), 0)
		FROM creators c
		LEFT JOIN posts p ON p.creator_username = c.username
		GROUP BY c.username
		ORDER BY c.followers DESC, c.username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}
	defer rows.Close()

	out := []CreatorMetrics{}
	for rows.Next() {
		var likes, comments int64
		c, err := scanCreator(rows, &likes, &comments)
		if err != nil {
			return nil, fmt.Errorf("scan creator: %w", err)
		}
		out = append(out, CreatorMetrics{
			Creator:        c,
			TotalLikes:     likes,
			TotalComments:  comments,
			EngagementRate: derive.EngagementRate(likes, comments, c.Followers),
			Tier:           derive.TierFor(c.Followers, derive.InstagramThresholds),
			Niches:         nonNil(derive.DetectNiches(c.Biography)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creators: %w", err)
	}
	return out, nil
}

// ListPosts returns a creator's posts, newest first.
func (s *Store) ListPosts(ctx context.Context, username string) ([]Post, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE creator_username = ? ORDER BY timestamp DESC, id ASC",
		strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		var (
			p                             Post
			kind, shortCode, caption      sql.NullString
			hashtags, url, ts, displayURL sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.CreatorUsername, &kind, &shortCode, &caption, &hashtags, &url,
			&p.LikesCount, &p.CommentsCount, &ts, &displayURL); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Type = kind.String
		p.ShortCode = shortCode.String
		p.Caption = caption.String
		p.Hashtags = decodeStrings(hashtags.String)
		p.URL = url.String
		p.Timestamp = ts.String
		p.DisplayURL = displayURL.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// InstagramStats aggregates audience figures across all creators.
func (s *Store) InstagramStats(ctx context.Context) (InstagramStats, error) {
	ctx = ensureContext(ctx)
	var stats InstagramStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(followers), 0),
			COALESCE(CAST(ROUND(AVG(followers)) AS INTEGER), 0),
			COALESCE(MAX(followers), 0),
			COALESCE(SUM(is_verified), 0),
			COALESCE(SUM(posts_count), 0)
		FROM creators`).Scan(
		&stats.TotalCreators, &stats.TotalFollowers, &stats.AvgFollowers,
		&stats.MaxFollowers, &stats.VerifiedCount, &stats.TotalPosts,
	)
	if err != nil {
		return InstagramStats{}, fmt.Errorf("instagram stats: %w", err)
	}
	return stats, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
