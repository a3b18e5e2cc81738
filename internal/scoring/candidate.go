package scoring

import (
	"strings"

	"creatorscope/internal/store"
	"creatorscope/internal/textutil"
)

// DefaultBioMaxLength caps the biography sent for each creator.
const DefaultBioMaxLength = 300

// Candidate is the platform-agnostic view of a creator sent to the oracle.
type Candidate struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Platform       store.Platform `json:"platform"`
	Bio            string         `json:"bio"`
	Followers      int64          `json:"followers"`
	EngagementRate float64        `json:"engagement_rate"`
	Niches         string         `json:"niches"`
}

// FromCreator normalizes an Instagram creator.
func FromCreator(c store.CreatorMetrics, bioMax int) Candidate {
	return Candidate{
		ID:             c.Username,
		Name:           c.DisplayName(),
		Platform:       store.PlatformInstagram,
		Bio:            textutil.TruncateRunes(c.Biography, bioMax),
		Followers:      c.Followers,
		EngagementRate: c.EngagementRate,
		Niches:         strings.Join(c.Niches, ", "),
	}
}

// FromChannel normalizes a YouTube channel.
func FromChannel(c store.ChannelMetrics, bioMax int) Candidate {
	return Candidate{
		ID:             c.ChannelID,
		Name:           c.DisplayName(),
		Platform:       store.PlatformYouTube,
		Bio:            textutil.TruncateRunes(c.Description, bioMax),
		Followers:      c.Subscribers,
		EngagementRate: c.EngagementRate,
		Niches:         strings.Join(c.Niches, ", "),
	}
}

// Candidates merges Instagram creators followed by YouTube channels.
func Candidates(creators []store.CreatorMetrics, channels []store.ChannelMetrics, bioMax int) []Candidate {
	if bioMax <= 0 {
		bioMax = DefaultBioMaxLength
	}
	out := make([]Candidate, 0, len(creators)+len(channels))
	for _, c := range creators {
		out = append(out, FromCreator(c, bioMax))
	}
	for _, c := range channels {
		out = append(out, FromChannel(c, bioMax))
	}
	return out
}

// Partition splits items into contiguous batches of size; the last batch may
// be smaller. A size below one is treated as one.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}
