package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const analysisColumns = "id, platform, creator_id, creator_name, profile_scores, best_fit_profile, best_fit_score, reasoning, analyzed_at"

// UpsertAnalysisResult writes a result keyed by platform:creator_id,
// replacing any previous result wholesale.
func (s *Store) UpsertAnalysisResult(ctx context.Context, r AnalysisResult) error {
	creatorID := strings.TrimSpace(r.CreatorID)
	if creatorID == "" || r.Platform == "" {
		return fmt.Errorf("upsert analysis result: %w", ErrMissingKey)
	}
	scores := r.ProfileScores
	if scores == nil {
		scores = map[string]int{}
	}
	encoded, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("encode profile scores: %w", err)
	}
	id := AnalysisID(r.Platform, creatorID)
	_, err = s.execWithRetry(ctx, `
		INSERT INTO analysis_results (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			creator_name = excluded.creator_name,
			profile_scores = excluded.profile_scores,
			best_fit_profile = excluded.best_fit_profile,
			best_fit_score = excluded.best_fit_score,
			reasoning = excluded.reasoning,
			analyzed_at = excluded.analyzed_at`,
		id,
		string(r.Platform),
		creatorID,
		nullableString(r.CreatorName),
		string(encoded),
		nullableString(r.BestFitProfile),
		r.BestFitScore,
		nullableString(r.Reasoning),
		s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert analysis result %s: %w", id, err)
	}
	return nil
}

func scanAnalysisResult(scanner rowScanner) (AnalysisResult, error) {
	var (
		r           AnalysisResult
		platform    string
		name        sql.NullString
		scoresRaw   sql.NullString
		bestProfile sql.NullString
		reasoning   sql.NullString
		analyzedRaw sql.NullString
	)
	if err := scanner.Scan(&r.ID, &platform, &r.CreatorID, &name, &scoresRaw, &bestProfile,
		&r.BestFitScore, &reasoning, &analyzedRaw); err != nil {
		return AnalysisResult{}, err
	}
	r.Platform = Platform(platform)
	r.CreatorName = name.String
	r.BestFitProfile = bestProfile.String
	r.Reasoning = reasoning.String
	r.AnalyzedAt = parseTimeOrZero(analyzedRaw.String)
	r.ProfileScores = map[string]int{}
	if scoresRaw.String != "" {
		if err := json.Unmarshal([]byte(scoresRaw.String), &r.ProfileScores); err != nil {
			return AnalysisResult{}, fmt.Errorf("decode profile scores for %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// GetAnalysisResult fetches the stored result for one creator.
func (s *Store) GetAnalysisResult(ctx context.Context, platform Platform, creatorID string) (*AnalysisResult, error) {
	ctx = ensureContext(ctx)
	id := AnalysisID(platform, strings.TrimSpace(creatorID))
	row := s.db.QueryRowContext(ctx, "SELECT "+analysisColumns+" FROM analysis_results WHERE id = ?", id)
	r, err := scanAnalysisResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis result %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis result %s: %w", id, err)
	}
	return &r, nil
}

// ListAnalysisResults returns stored results, best score first. An empty
// platform lists both platforms.
func (s *Store) ListAnalysisResults(ctx context.Context, platform Platform) ([]AnalysisResult, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + analysisColumns + " FROM analysis_results"
	var args []any
	if platform != "" {
		query += " WHERE platform = ?"
		args = append(args, string(platform))
	}
	query += " ORDER BY best_fit_score DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analysis results: %w", err)
	}
	defer rows.Close()

	out := []AnalysisResult{}
	for rows.Next() {
		r, err := scanAnalysisResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis results: %w", err)
	}
	return out, nil
}

// AnalysisStats groups stored results by best-fit profile, most common first.
func (s *Store) AnalysisStats(ctx context.Context) (AnalysisStats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(best_fit_profile, ''), COUNT(*), ROUND(AVG(best_fit_score), 1)
		FROM analysis_results
		GROUP BY best_fit_profile
		ORDER BY COUNT(*) DESC, best_fit_profile ASC`)
	if err != nil {
		return AnalysisStats{}, fmt.Errorf("analysis stats: %w", err)
	}
	stats := AnalysisStats{ByProfile: []ProfileStat{}}
	for rows.Next() {
		var ps ProfileStat
		if err := rows.Scan(&ps.Profile, &ps.Count, &ps.AvgScore); err != nil {
			rows.Close()
			return AnalysisStats{}, fmt.Errorf("scan analysis stats: %w", err)
		}
		stats.ByProfile = append(stats.ByProfile, ps)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return AnalysisStats{}, fmt.Errorf("iterate analysis stats: %w", err)
	}
	rows.Close()

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), ROUND(AVG(best_fit_score), 1) FROM analysis_results",
	).Scan(&stats.Total, &avg); err != nil {
		return AnalysisStats{}, fmt.Errorf("analysis totals: %w", err)
	}
	stats.AvgScore = avg.Float64
	return stats, nil
}

// ClearAnalysisResults deletes every stored result and reports how many were removed.
func (s *Store) ClearAnalysisResults(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM analysis_results")
	if err != nil {
		return 0, fmt.Errorf("clear analysis results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear analysis results: rows affected: %w", err)
	}
	return n, nil
}
