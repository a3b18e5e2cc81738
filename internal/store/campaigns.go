package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// campaignTable describes the per-platform campaign table and the creator
// columns joined into campaign listings.
type campaignTable struct {
	table       string
	key         string
	creators    string
	creatorKey  string
	displayName string
	audience    string
	image       string
}

func campaignTableFor(platform Platform) (campaignTable, error) {
	switch platform {
	case PlatformInstagram:
		return campaignTable{
			table: "campaigns", key: "username",
			creators: "creators", creatorKey: "username",
			displayName: "COALESCE(NULLIF(c.full_name, ''), c.username)",
			audience:    "c.followers",
			image:       "c.profile_pic_url",
		}, nil
	case PlatformYouTube:
		return campaignTable{
			table: "yt_campaigns", key: "channel_id",
			creators: "yt_creators", creatorKey: "channel_id",
			displayName: "COALESCE(NULLIF(c.channel_name, ''), NULLIF(c.handle, ''), 'Unknown')",
			audience:    "c.subscribers",
			image:       "c.thumbnail_url",
		}, nil
	default:
		return campaignTable{}, fmt.Errorf("unknown platform %q", platform)
	}
}

// SetCampaignStatus creates or updates the campaign row for a creator. Unknown
// status values fail with ErrInvalidCampaignStatus and unstored creators with
// ErrUnknownCreator; neither mutates any row.
func (s *Store) SetCampaignStatus(ctx context.Context, platform Platform, creatorID string, status CampaignStatus, notes string) (*Campaign, error) {
	if _, err := ParseCampaignStatus(string(status)); err != nil {
		return nil, err
	}
	tbl, err := campaignTableFor(platform)
	if err != nil {
		return nil, err
	}
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, fmt.Errorf("set campaign status: %w", ErrMissingKey)
	}
	now := s.timestamp()
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, status, notes, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(%[2]s) DO UPDATE SET
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at`, tbl.table, tbl.key)
	if _, err := s.execWithRetry(ctx, query, creatorID, string(status), notes, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("set campaign status for %s: %w", creatorID, ErrUnknownCreator)
		}
		return nil, fmt.Errorf("set campaign status for %s: %w", creatorID, err)
	}
	return &Campaign{
		Platform:  platform,
		CreatorID: creatorID,
		Status:    status,
		Notes:     notes,
		UpdatedAt: parseTimeOrZero(now),
	}, nil
}

// GetCampaignStatus returns the campaign row for a creator, or ErrNotFound
// when no status has been recorded yet.
func (s *Store) GetCampaignStatus(ctx context.Context, platform Platform, creatorID string) (*Campaign, error) {
	ctx = ensureContext(ctx)
	tbl, err := campaignTableFor(platform)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT status, notes, updated_at FROM %s WHERE %s = ?", tbl.table, tbl.key)
	var (
		status     string
		notes      sql.NullString
		updatedRaw sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, strings.TrimSpace(creatorID)).Scan(&status, &notes, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", creatorID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", creatorID, err)
	}
	return &Campaign{
		Platform:  platform,
		CreatorID: strings.TrimSpace(creatorID),
		Status:    CampaignStatus(status),
		Notes:     notes.String,
		UpdatedAt: parseTimeOrZero(updatedRaw.String),
	}, nil
}

// ListCampaigns returns every campaign row joined with its creator's display
// fields, most recently updated first.
func (s *Store) ListCampaigns(ctx context.Context, platform Platform) ([]Campaign, error) {
	ctx = ensureContext(ctx)
	tbl, err := campaignTableFor(platform)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT cam.%[2]s, cam.status, cam.notes, cam.updated_at, %[5]s, %[6]s, %[7]s
		FROM %[1]s cam
		JOIN %[3]s c ON c.%[4]s = cam.%[2]s
		ORDER BY cam.updated_at DESC, cam.%[2]s ASC`,
		tbl.table, tbl.key, tbl.creators, tbl.creatorKey, tbl.displayName, tbl.audience, tbl.image)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []Campaign{}
	for rows.Next() {
		var (
			c          Campaign
			status     string
			notes      sql.NullString
			updatedRaw sql.NullString
			name       sql.NullString
			image      sql.NullString
		)
		if err := rows.Scan(&c.CreatorID, &status, &notes, &updatedRaw, &name, &c.Audience, &image); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		c.Platform = platform
		c.Status = CampaignStatus(status)
		c.Notes = notes.String
		c.UpdatedAt = parseTimeOrZero(updatedRaw.String)
		c.DisplayName = name.String
		c.ImageURL = image.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	return out, nil
}

// CampaignStats counts campaign rows per status.
func (s *Store) CampaignStats(ctx context.Context, platform Platform) (CampaignStats, error) {
	ctx = ensureContext(ctx)
	tbl, err := campaignTableFor(platform)
	if err != nil {
		return CampaignStats{}, err
	}
	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN status = 'not_contacted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'contacted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'content_posted' THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM %s`, tbl.table)
	var stats CampaignStats
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.NotContacted, &stats.Contacted, &stats.Confirmed, &stats.ContentPosted, &stats.Total,
	); err != nil {
		return CampaignStats{}, fmt.Errorf("campaign stats: %w", err)
	}
	return stats, nil
}
