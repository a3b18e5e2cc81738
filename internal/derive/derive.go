// Package derive computes read-time creator metrics: engagement rate,
// audience tier and niche tags. Nothing here is persisted.
package derive

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Tier names an audience size bucket.
type Tier string

const (
	TierNano  Tier = "nano"
	TierMicro Tier = "micro"
	TierMid   Tier = "mid-tier"
	TierMacro Tier = "macro"
)

// Thresholds are inclusive lower bounds for micro, mid-tier and macro.
type Thresholds struct {
	Micro int64
	Mid   int64
	Macro int64
}

// InstagramThresholds buckets follower counts.
var InstagramThresholds = Thresholds{Micro: 10_000, Mid: 50_000, Macro: 200_000}

// YouTubeThresholds buckets subscriber counts.
var YouTubeThresholds = Thresholds{Micro: 10_000, Mid: 100_000, Macro: 1_000_000}

// TierFor maps an audience size to its bucket.
func TierFor(audience int64, t Thresholds) Tier {
	switch {
	case audience >= t.Macro:
		return TierMacro
	case audience >= t.Mid:
		return TierMid
	case audience >= t.Micro:
		return TierMicro
	default:
		return TierNano
	}
}

// EngagementRate returns 100*(likes+comments)/audience rounded to two
// decimals, or 0 when audience is not positive.
func EngagementRate(likes, comments, audience int64) float64 {
	if audience <= 0 {
		return 0
	}
	return Round2(float64(likes+comments) * 100 / float64(audience))
}

// ViewEngagementRate returns 100*(avgLikes+avgComments)/avgViews rounded to
// two decimals, or 0 when there are no views.
func ViewEngagementRate(avgLikes, avgComments, avgViews float64) float64 {
	if avgViews <= 0 || math.IsNaN(avgViews) {
		return 0
	}
	return Round2((avgLikes + avgComments) * 100 / avgViews)
}

// Round2 rounds half away from zero at two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Niche pairs a category with the keywords that signal it.
type Niche struct {
	Name     string
	Keywords []string
}

// Niches is the keyword table in declared order. Matching is substring based,
// so short keywords like "ai" or "ml" also match inside longer words.
var Niches = []Niche{
	{"AI", []string{"ai", "artificial intelligence", "machine learning", "ml", "deep learning", "gpt", "neural"}},
	{"Video", []string{"video", "film", "filmmaker", "cinema", "vfx", "animation", "motion"}},
	{"Design", []string{"design", "designer", "graphic", "ui", "ux", "illustration", "illustrator"}},
	{"Fashion", []string{"fashion", "style", "stylist", "model", "outfit", "clothing", "beauty"}},
	{"Marketing", []string{"marketing", "growth", "brand", "ads", "social media", "digital marketing"}},
	{"Creator", []string{"creator", "content creator", "influencer", "creative"}},
	{"Photography", []string{"photo", "photographer", "photography", "portrait", "landscape"}},
	{"Music", []string{"music", "musician", "producer", "dj", "singer", "songwriter"}},
	{"Tech", []string{"tech", "developer", "software", "coding", "programming", "startup", "saas"}},
	{"Fitness", []string{"fitness", "gym", "workout", "health", "nutrition", "wellness", "yoga"}},
}

// DetectNiches returns every category whose keywords occur in bio, in table
// order. An empty bio yields nil.
func DetectNiches(bio string) []string {
	if strings.TrimSpace(bio) == "" {
		return nil
	}
	folded := cases.Fold().String(bio)
	var out []string
	for _, niche := range Niches {
		for _, keyword := range niche.Keywords {
			if strings.Contains(folded, keyword) {
				out = append(out, niche.Name)
				break
			}
		}
	}
	return out
}
