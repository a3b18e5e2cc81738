package store

import (
	"fmt"
	"strings"
	"time"

	"creatorscope/internal/derive"
)

// Platform identifies the social network a creator belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

// ParsePlatform accepts "instagram"/"ig" and "youtube"/"yt".
func ParsePlatform(value string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "instagram", "ig":
		return PlatformInstagram, nil
	case "youtube", "yt":
		return PlatformYouTube, nil
	default:
		return "", fmt.Errorf("unknown platform %q", value)
	}
}

// Creator is an Instagram account keyed by username.
type Creator struct {
	Username         string    `json:"username"`
	ID               string    `json:"id,omitempty"`
	FullName         string    `json:"full_name"`
	Biography        string    `json:"biography"`
	Followers        int64     `json:"followers"`
	Following        int64     `json:"following"`
	PostsCount       int64     `json:"posts_count"`
	IsVerified       bool      `json:"is_verified"`
	IsBusiness       bool      `json:"is_business"`
	BusinessCategory string    `json:"business_category,omitempty"`
	Private          bool      `json:"private"`
	ProfilePicURL    string    `json:"profile_pic_url,omitempty"`
	ProfilePicURLHD  string    `json:"profile_pic_url_hd,omitempty"`
	ExternalURLs     []string  `json:"external_urls"`
	ScrapedAt        time.Time `json:"scraped_at"`
}

// DisplayName returns the full name, falling back to the username.
func (c Creator) DisplayName() string {
	if name := strings.TrimSpace(c.FullName); name != "" {
		return name
	}
	return c.Username
}

// Post is an Instagram post owned by a Creator.
type Post struct {
	ID              string   `json:"id"`
	CreatorUsername string   `json:"creator_username"`
	Type            string   `json:"type,omitempty"`
	ShortCode       string   `json:"short_code,omitempty"`
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	URL             string   `json:"url,omitempty"`
	LikesCount      int64    `json:"likes_count"`
	CommentsCount   int64    `json:"comments_count"`
	Timestamp       string   `json:"timestamp,omitempty"`
	DisplayURL      string   `json:"display_url,omitempty"`
}

// CreatorMetrics is a Creator with read-time derived metrics.
type CreatorMetrics struct {
	Creator
	TotalLikes     int64       `json:"total_likes"`
	TotalComments  int64       `json:"total_comments"`
	EngagementRate float64     `json:"engagement_rate"`
	Tier           derive.Tier `json:"tier"`
	Niches         []string    `json:"niches"`
}

// Channel is a YouTube channel keyed by channel id.
type Channel struct {
	ChannelID    string    `json:"channel_id"`
	ChannelName  string    `json:"channel_name"`
	Handle       string    `json:"handle,omitempty"`
	Description  string    `json:"description"`
	Subscribers  int64     `json:"subscribers"`
	TotalViews   int64     `json:"total_views"`
	VideoCount   int64     `json:"video_count"`
	IsVerified   bool      `json:"is_verified"`
	ChannelURL   string    `json:"channel_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Country      string    `json:"country,omitempty"`
	JoinedDate   string    `json:"joined_date,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// DisplayName returns the channel name, then the handle, then "Unknown".
func (c Channel) DisplayName() string {
	if name := strings.TrimSpace(c.ChannelName); name != "" {
		return name
	}
	if handle := strings.TrimSpace(c.Handle); handle != "" {
		return handle
	}
	return "Unknown"
}

// Video is a YouTube video owned by a Channel.
type Video struct {
	VideoID      string `json:"video_id"`
	ChannelID    string `json:"channel_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	URL          string `json:"url,omitempty"`
	Views        int64  `json:"views"`
	Likes        int64  `json:"likes"`
	Comments     int64  `json:"comments"`
	Duration     string `json:"duration,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// ChannelMetrics is a Channel with read-time derived metrics.
type ChannelMetrics struct {
	Channel
	AvgViews       float64     `json:"avg_views"`
	AvgLikes       float64     `json:"avg_likes"`
	AvgComments    float64     `json:"avg_comments"`
	EngagementRate float64     `json:"engagement_rate"`
	Tier           derive.Tier `json:"tier"`
	Niches         []string    `json:"niches"`
}

// CampaignStatus tracks outreach progress for one creator.
type CampaignStatus string

const (
	StatusNotContacted  CampaignStatus = "not_contacted"
	StatusContacted     CampaignStatus = "contacted"
	StatusConfirmed     CampaignStatus = "confirmed"
	StatusContentPosted CampaignStatus = "content_posted"
)

// CampaignStatuses lists every valid status in workflow order.
var CampaignStatuses = []CampaignStatus{StatusNotContacted, StatusContacted, StatusConfirmed, StatusContentPosted}

// ParseCampaignStatus validates a status value.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	for _, status := range CampaignStatuses {
		if value == string(status) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCampaignStatus, value)
}

// CampaignStatusNames returns the valid values joined for messages.
func CampaignStatusNames() string {
	names := make([]string, 0, len(CampaignStatuses))
	for _, status := range CampaignStatuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

// Campaign is the stored campaign row plus display fields of its creator.
type Campaign struct {
	Platform    Platform       `json:"platform"`
	CreatorID   string         `json:"creator_id"`
	Status      CampaignStatus `json:"status"`
	Notes       string         `json:"notes"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DisplayName string         `json:"display_name,omitempty"`
	Audience    int64          `json:"audience,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
}

// CampaignStats counts campaigns per status.
type CampaignStats struct {
	NotContacted  int64 `json:"not_contacted"`
	Contacted     int64 `json:"contacted"`
	Confirmed     int64 `json:"confirmed"`
	ContentPosted int64 `json:"content_posted"`
	Total         int64 `json:"total"`
}

// InstagramStats aggregates the creators table.
type InstagramStats struct {
	TotalCreators  int64 `json:"total_creators"`
	TotalFollowers int64 `json:"total_followers"`
	AvgFollowers   int64 `json:"avg_followers"`
	MaxFollowers   int64 `json:"max_followers"`
	VerifiedCount  int64 `json:"verified_count"`
	TotalPosts     int64 `json:"total_posts"`
}

// YouTubeStats aggregates the yt_creators table.
type YouTubeStats struct {
	TotalChannels    int64 `json:"total_channels"`
	TotalSubscribers int64 `json:"total_subscribers"`
	AvgSubscribers   int64 `json:"avg_subscribers"`
	MaxSubscribers   int64 `json:"max_subscribers"`
	VerifiedCount    int64 `json:"verified_count"`
	TotalVideos      int64 `json:"total_videos"`
}

// AnalysisResult is one creator's scores against the ideal profiles.
type AnalysisResult struct {
	ID             string         `json:"id"`
	Platform       Platform       `json:"platform"`
	CreatorID      string         `json:"creator_id"`
	CreatorName    string         `json:"creator_name"`
	ProfileScores  map[string]int `json:"profile_scores"`
	BestFitProfile string         `json:"best_fit_profile"`
	BestFitScore   int            `json:"best_fit_score"`
	Reasoning      string         `json:"reasoning"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
}

// AnalysisID is the primary key for a platform creator pair.
func AnalysisID(platform Platform, creatorID string) string {
	return string(platform) + ":" + creatorID
}

// ProfileStat summarizes results sharing one best-fit profile.
type ProfileStat struct {
	Profile  string  `json:"best_fit_profile"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// AnalysisStats summarizes all stored results.
type AnalysisStats struct {
	ByProfile []ProfileStat `json:"by_profile"`
	Total     int64         `json:"total"`
	AvgScore  float64       `json:"avg_score"`
}
