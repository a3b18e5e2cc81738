package scoring

import (
	"strings"
	"testing"

	"creatorscope/internal/store"
)

func TestPartitionCoversInputInOrder(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	batches := Partition(items, 10)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[2]) != 3 {
		t.Fatalf("expected last batch of 3, got %d", len(batches[2]))
	}
	next := 0
	for _, batch := range batches {
		if len(batch) == 0 {
			t.Fatal("empty batch")
		}
		for _, v := range batch {
			if v != next {
				t.Fatalf("expected %d, got %d", next, v)
			}
			next++
		}
	}
	if got := Partition([]int{}, 10); len(got) != 0 {
		t.Fatalf("expected no batches, got %d", len(got))
	}
}

func TestCandidatesMergeInstagramThenYouTube(t *testing.T) {
	creators := []store.CreatorMetrics{
		{Creator: store.Creator{Username: "jane", Biography: strings.Repeat("é", 400), Followers: 5000}, EngagementRate: 2.5, Niches: []string{"AI", "Video"}},
		{Creator: store.Creator{Username: "noname"}},
	}
	channels := []store.ChannelMetrics{
		{Channel: store.Channel{ChannelID: "UC1", Handle: "@one", Subscribers: 20000, Description: "edits"}},
		{Channel: store.Channel{ChannelID: "UC2"}},
	}
	got := Candidates(creators, channels, 0)
	if len(got) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(got))
	}
	if got[0].Platform != store.PlatformInstagram || got[2].Platform != store.PlatformYouTube {
		t.Fatalf("unexpected platform order: %+v", got)
	}
	if n := len([]rune(got[0].Bio)); n != DefaultBioMaxLength {
		t.Fatalf("expected bio truncated to %d runes, got %d", DefaultBioMaxLength, n)
	}
	if got[0].Niches != "AI, Video" {
		t.Fatalf("unexpected niches %q", got[0].Niches)
	}
	if got[1].Name != "noname" {
		t.Fatalf("expected username fallback, got %q", got[1].Name)
	}
	if got[2].Name != "@one" || got[3].Name != "Unknown" {
		t.Fatalf("unexpected channel names %q %q", got[2].Name, got[3].Name)
	}
	if got[2].Followers != 20000 {
		t.Fatalf("expected subscribers as followers, got %d", got[2].Followers)
	}
}
