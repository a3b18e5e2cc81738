package scrape

import (
	"net/url"
	"strings"

	"creatorscope/internal/ingest"
	"creatorscope/internal/store"
	"creatorscope/internal/textutil"
)

// InstagramRecords converts profile actor output into store records. Profiles
// without a username are dropped.
func InstagramRecords(profiles []InstagramProfile) []ingest.InstagramRecord {
	records := make([]ingest.InstagramRecord, 0, len(profiles))
	for _, p := range profiles {
		username := strings.TrimSpace(p.Username)
		if username == "" {
			continue
		}
		records = append(records, ingest.InstagramRecord{
			Creator: normalizeProfile(p),
			Posts:   normalizePosts(p.LatestPosts),
		})
	}
	return records
}

func normalizeProfile(p InstagramProfile) store.Creator {
	external := []string(p.ExternalURLs)
	if len(external) == 0 && strings.TrimSpace(p.ExternalURL) != "" {
		external = []string{strings.TrimSpace(p.ExternalURL)}
	}
	if external == nil {
		external = []string{}
	}
	return store.Creator{
		Username:         strings.TrimSpace(p.Username),
		ID:               string(p.ID),
		FullName:         p.FullName,
		Biography:        p.Biography,
		Followers:        p.FollowersCount.Int64(),
		Following:        p.FollowsCount.Int64(),
		PostsCount:       p.PostsCount.Int64(),
		IsVerified:       bool(p.Verified),
		IsBusiness:       bool(p.IsBusinessAccount),
		BusinessCategory: p.BusinessCategoryName,
		Private:          bool(p.Private),
		ProfilePicURL:    p.ProfilePicURL,
		ProfilePicURLHD:  p.ProfilePicURLHD,
		ExternalURLs:     external,
	}
}

func normalizePosts(posts []InstagramPost) []store.Post {
	out := make([]store.Post, 0, len(posts))
	for _, p := range posts {
		hashtags := p.Hashtags
		if hashtags == nil {
			hashtags = []string{}
		}
		out = append(out, store.Post{
			ID:            string(p.ID),
			Type:          p.Type,
			ShortCode:     p.ShortCode,
			Caption:       p.Caption,
			Hashtags:      hashtags,
			URL:           p.URL,
			LikesCount:    p.LikesCount.Int64(),
			CommentsCount: p.CommentsCount.Int64(),
			Timestamp:     p.Timestamp,
			DisplayURL:    p.DisplayURL,
		})
	}
	return out
}

// UniqueOwners returns the distinct non-empty owner usernames in first-seen order.
func UniqueOwners(posts []InstagramPost) []string {
	seen := make(map[string]struct{}, len(posts))
	owners := make([]string, 0, len(posts))
	for _, p := range posts {
		name := strings.TrimSpace(p.OwnerUsername)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		owners = append(owners, name)
	}
	return owners
}

// ChannelRef is a channel discovered from search results.
type ChannelRef struct {
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
	URL         string `json:"url"`
}

// ExtractChannels dedupes search results by channel id, falling back to the
// channel URL, and caps the result at limit (no cap when limit <= 0).
func ExtractChannels(items []YouTubeItem, limit int) []ChannelRef {
	seen := make(map[string]struct{})
	var refs []ChannelRef
	for _, item := range items {
		id := strings.TrimSpace(item.ChannelID)
		channelURL := strings.TrimSpace(item.ChannelURL)
		key := textutil.FirstNonEmpty(id, channelURL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		u := channelURL
		if u == "" && strings.TrimSpace(item.ChannelUsername) != "" {
			u = "https://www.youtube.com/@" + strings.TrimPrefix(strings.TrimSpace(item.ChannelUsername), "@")
		}
		if u == "" && id != "" {
			u = "https://www.youtube.com/channel/" + id
		}
		if u == "" {
			continue
		}
		refs = append(refs, ChannelRef{ChannelID: id, ChannelName: item.ChannelName, URL: u})
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs
}

// GroupYouTubeItems groups channel scraper items by channel id in first-seen
// order. The first item of a channel supplies its profile; every item with an
// id and a title contributes a video.
func GroupYouTubeItems(items []YouTubeItem) []ingest.ChannelRecord {
	index := make(map[string]int)
	var records []ingest.ChannelRecord
	for _, item := range items {
		id := strings.TrimSpace(item.ChannelID)
		if id == "" {
			continue
		}
		pos, ok := index[id]
		if !ok {
			pos = len(records)
			index[id] = pos
			records = append(records, ingest.ChannelRecord{Channel: normalizeChannel(item), Videos: []store.Video{}})
		}
		if strings.TrimSpace(string(item.ID)) != "" && strings.TrimSpace(item.Title) != "" {
			records[pos].Videos = append(records[pos].Videos, normalizeVideo(item))
		}
	}
	return records
}

// InSubscriberRange reports whether a channel lies in [min, max]. A max of
// zero means no upper bound.
func InSubscriberRange(c store.Channel, min, max int64) bool {
	if c.Subscribers < min {
		return false
	}
	return max <= 0 || c.Subscribers <= max
}

func normalizeChannel(item YouTubeItem) store.Channel {
	about := item.about()
	return store.Channel{
		ChannelID:    textutil.FirstNonEmpty(item.ChannelID, string(item.ID)),
		ChannelName:  textutil.FirstNonEmpty(about.ChannelName, item.ChannelName, item.Title),
		Handle:       textutil.FirstNonEmpty(item.ChannelUsername, about.ChannelHandle),
		Description:  textutil.FirstNonEmpty(item.ChannelDescription, about.ChannelDescription, item.Description),
		Subscribers:  firstPositive(item.NumberOfSubscribers, item.SubscriberCount),
		TotalViews:   firstPositive(item.ChannelTotalViews, item.ViewCount),
		VideoCount:   firstPositive(item.ChannelTotalVideos, item.VideoCount),
		IsVerified:   bool(item.IsChannelVerified),
		ChannelURL:   textutil.FirstNonEmpty(item.InputChannelURL, item.ChannelURL, item.URL),
		ThumbnailURL: textutil.FirstNonEmpty(item.ChannelAvatarURL, item.ThumbnailURL),
		Country:      textutil.FirstNonEmpty(item.ChannelLocation, about.ChannelLocation),
		JoinedDate:   textutil.FirstNonEmpty(item.ChannelJoinedDate, about.ChannelJoinedDate),
	}
}

func normalizeVideo(item YouTubeItem) store.Video {
	return store.Video{
		VideoID:      strings.TrimSpace(string(item.ID)),
		ChannelID:    strings.TrimSpace(item.ChannelID),
		Title:        item.Title,
		Description:  item.Description,
		URL:          item.URL,
		Views:        item.ViewCount.Int64(),
		Likes:        firstPositive(item.LikeCount, item.Likes),
		Comments:     firstPositive(item.CommentCount, item.CommentsCount),
		Duration:     item.Duration,
		PublishedAt:  textutil.FirstNonEmpty(item.Date, item.PublishedAt),
		ThumbnailURL: item.ThumbnailURL,
	}
}

func firstPositive(values ...FlexInt) int64 {
	for _, v := range values {
		if v > 0 {
			return v.Int64()
		}
	}
	return 0
}

// SearchURL builds a YouTube results URL for a query.
func SearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}
