package scrape

import (
	"fmt"
	"log/slog"
	"os"

	"creatorscope/internal/avatars"
	"creatorscope/internal/fileutil"
	"creatorscope/internal/ingest"
	"creatorscope/internal/logging"
)

func (d Deps) saveSnapshot(name string, v any) {
	if d.SnapshotPath == nil {
		return
	}
	path := d.SnapshotPath(name)
	if err := fileutil.WriteJSON(path, v); err != nil {
		logging.WarnWithContext(d.logger("scrape"), "snapshot not saved", "snapshot_write_failed",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
			logging.String(logging.FieldImpact, "raw actor output is not kept for re-import"),
			logging.Error(err),
		)
	}
}

// ReadInstagramSnapshot loads a creator_profiles.json snapshot. Undecodable
// items are logged to logger and skipped.
func ReadInstagramSnapshot(path string, logger *slog.Logger) ([]InstagramProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	profiles, dropped, err := DecodeInstagramProfiles(data)
	if err != nil {
		return nil, err
	}
	warnDropped(logging.NewComponentLogger(logger, "import"), "profile", dropped)
	return profiles, nil
}

// ReadChannelSnapshot loads a yt_channel_profiles.json snapshot.
func ReadChannelSnapshot(path string) ([]ingest.ChannelRecord, error) {
	var records []ingest.ChannelRecord
	if err := fileutil.ReadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// InstagramAvatarRequests keys each profile picture by username.
func InstagramAvatarRequests(profiles []InstagramProfile) []avatars.Request {
	reqs := make([]avatars.Request, 0, len(profiles))
	for _, p := range profiles {
		if p.Username == "" {
			continue
		}
		reqs = append(reqs, avatars.Request{Key: p.Username, URL: p.AvatarURL()})
	}
	return reqs
}

// ChannelAvatarRequests keys each channel thumbnail by channel id.
func ChannelAvatarRequests(records []ingest.ChannelRecord) []avatars.Request {
	reqs := make([]avatars.Request, 0, len(records))
	for _, r := range records {
		if r.Channel.ChannelID == "" {
			continue
		}
		reqs = append(reqs, avatars.Request{Key: r.Channel.ChannelID, URL: r.Channel.ThumbnailURL})
	}
	return reqs
}
