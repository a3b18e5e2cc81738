package scrape

import (
	"encoding/json"
	"fmt"
	"strings"
)

// InstagramPost is a post as returned by the hashtag and profile actors.
type InstagramPost struct {
	ID            FlexString `json:"id"`
	Type          string     `json:"type"`
	ShortCode     string     `json:"shortCode"`
	Caption       string     `json:"caption"`
	Hashtags      []string   `json:"hashtags"`
	URL           string     `json:"url"`
	LikesCount    FlexInt    `json:"likesCount"`
	CommentsCount FlexInt    `json:"commentsCount"`
	Timestamp     string     `json:"timestamp"`
	DisplayURL    string     `json:"displayUrl"`
	OwnerUsername string     `json:"ownerUsername"`
	OwnerFullName string     `json:"ownerFullName"`
	OwnerID       FlexString `json:"ownerId"`
}

// InstagramProfile is a profile as returned by the profile actor.
type InstagramProfile struct {
	ID                   FlexString      `json:"id"`
	Username             string          `json:"username"`
	FullName             string          `json:"fullName"`
	Biography            string          `json:"biography"`
	FollowersCount       FlexInt         `json:"followersCount"`
	FollowsCount         FlexInt         `json:"followsCount"`
	PostsCount           FlexInt         `json:"postsCount"`
	Verified             FlexBool        `json:"verified"`
	IsBusinessAccount    FlexBool        `json:"isBusinessAccount"`
	BusinessCategoryName string          `json:"businessCategoryName"`
	Private              FlexBool        `json:"private"`
	ProfilePicURL        string          `json:"profilePicUrl"`
	ProfilePicURLHD      string          `json:"profilePicUrlHD"`
	ExternalURLs         FlexStrings     `json:"externalUrls"`
	ExternalURL          string          `json:"externalUrl"`
	LatestPosts          []InstagramPost `json:"latestPosts"`
}

// AvatarURL prefers the standard picture and falls back to the HD one.
func (p InstagramProfile) AvatarURL() string {
	if u := strings.TrimSpace(p.ProfilePicURL); u != "" {
		return u
	}
	return strings.TrimSpace(p.ProfilePicURLHD)
}

// ChannelInfo is the nested about-page block some channel items carry.
type ChannelInfo struct {
	ChannelName        string `json:"channelName"`
	ChannelHandle      string `json:"channelHandle"`
	ChannelDescription string `json:"channelDescription"`
	ChannelLocation    string `json:"channelLocation"`
	ChannelJoinedDate  string `json:"channelJoinedDate"`
}

// YouTubeItem is one result of the channel scraper actor. The actor emits
// one item per video, each carrying the channel fields of its owner.
type YouTubeItem struct {
	ID                  FlexString   `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	URL                 string       `json:"url"`
	ViewCount           FlexInt      `json:"viewCount"`
	LikeCount           FlexInt      `json:"likeCount"`
	Likes               FlexInt      `json:"likes"`
	CommentCount        FlexInt      `json:"commentCount"`
	CommentsCount       FlexInt      `json:"commentsCount"`
	Duration            string       `json:"duration"`
	Date                string       `json:"date"`
	PublishedAt         string       `json:"publishedAt"`
	ThumbnailURL        string       `json:"thumbnailUrl"`
	ChannelID           string       `json:"channelId"`
	ChannelName         string       `json:"channelName"`
	ChannelUsername     string       `json:"channelUsername"`
	ChannelURL          string       `json:"channelUrl"`
	InputChannelURL     string       `json:"inputChannelUrl"`
	ChannelDescription  string       `json:"channelDescription"`
	NumberOfSubscribers FlexInt      `json:"numberOfSubscribers"`
	SubscriberCount     FlexInt      `json:"subscriberCount"`
	ChannelTotalViews   FlexInt      `json:"channelTotalViews"`
	ChannelTotalVideos  FlexInt      `json:"channelTotalVideos"`
	VideoCount          FlexInt      `json:"videoCount"`
	IsChannelVerified   FlexBool     `json:"isChannelVerified"`
	ChannelAvatarURL    string       `json:"channelAvatarUrl"`
	ChannelLocation     string       `json:"channelLocation"`
	ChannelJoinedDate   string       `json:"channelJoinedDate"`
	AboutChannelInfo    *ChannelInfo `json:"aboutChannelInfo"`
}

func (i YouTubeItem) about() ChannelInfo {
	if i.AboutChannelInfo == nil {
		return ChannelInfo{}
	}
	return *i.AboutChannelInfo
}

// decodeItems decodes dataset items one by one. Items that are not JSON
// objects of the expected shape are dropped and counted.
func decodeItems[T any](items []json.RawMessage) ([]T, int) {
	out := make([]T, 0, len(items))
	dropped := 0
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			dropped++
			continue
		}
		out = append(out, v)
	}
	return out, dropped
}

// DecodeInstagramProfiles decodes a creator_profiles.json snapshot and
// reports how many items were not profile objects.
func DecodeInstagramProfiles(data []byte) ([]InstagramProfile, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("decode instagram profiles: %w", err)
	}
	profiles, dropped := decodeItems[InstagramProfile](items)
	return profiles, dropped, nil
}
