package testsupport

import (
	"context"
	"testing"

	"creatorscope/internal/config"
	"creatorscope/internal/store"
)

// MustOpenStore opens the configured database for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// SeedCreator stores an Instagram creator and its posts.
func SeedCreator(t testing.TB, s *store.Store, c store.Creator, posts ...store.Post) {
	t.Helper()

	ctx := context.Background()
	if err := s.UpsertCreator(ctx, c); err != nil {
		t.Fatalf("UpsertCreator %s: %v", c.Username, err)
	}
	for _, p := range posts {
		if err := s.UpsertPost(ctx, c.Username, p); err != nil {
			t.Fatalf("UpsertPost %s: %v", p.ID, err)
		}
	}
}

// SeedChannel stores a YouTube channel and its videos.
func SeedChannel(t testing.TB, s *store.Store, c store.Channel, videos ...store.Video) {
	t.Helper()

	ctx := context.Background()
	if err := s.UpsertChannel(ctx, c); err != nil {
		t.Fatalf("UpsertChannel %s: %v", c.ChannelID, err)
	}
	for _, v := range videos {
		if err := s.UpsertVideo(ctx, c.ChannelID, v); err != nil {
			t.Fatalf("UpsertVideo %s: %v", v.VideoID, err)
		}
	}
}
