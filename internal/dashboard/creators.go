package dashboard

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"creatorscope/internal/store"
)

type creatorDetail struct {
	store.Creator
	Posts []store.Post `json:"posts"`
}

type channelDetail struct {
	store.Channel
	Videos []store.Video `json:"videos"`
}

func (s *server) registerInstagram(r fiber.Router) {
	r.Get("/creators", s.listCreators)
	r.Get("/creators/:id", s.getCreator)
	r.Get("/stats", s.instagramStats)
	r.Get("/campaigns", s.listCampaigns(store.PlatformInstagram))
	r.Get("/campaigns/stats", s.campaignStats(store.PlatformInstagram))
	r.Put("/campaigns/:id", s.updateCampaign(store.PlatformInstagram))
}

func (s *server) registerYouTube(r fiber.Router) {
	r.Get("/creators", s.listChannels)
	r.Get("/creators/:id", s.getChannel)
	r.Get("/stats", s.youtubeStats)
	r.Get("/campaigns", s.listCampaigns(store.PlatformYouTube))
	r.Get("/campaigns/stats", s.campaignStats(store.PlatformYouTube))
	r.Put("/campaigns/:id", s.updateCampaign(store.PlatformYouTube))
}

func (s *server) listCreators(c *fiber.Ctx) error {
	creators, err := s.store.ListCreators(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(creators)
}

func (s *server) getCreator(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	creator, err := s.store.GetCreator(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Creator not found")
	}
	if err != nil {
		return err
	}
	posts, err := s.store.ListPosts(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(creatorDetail{Creator: *creator, Posts: posts})
}

func (s *server) instagramStats(c *fiber.Ctx) error {
	stats, err := s.store.InstagramStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *server) listChannels(c *fiber.Ctx) error {
	channels, err := s.store.ListChannels(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(channels)
}

func (s *server) getChannel(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	channel, err := s.store.GetChannel(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Channel not found")
	}
	if err != nil {
		return err
	}
	videos, err := s.store.ListVideos(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(channelDetail{Channel: *channel, Videos: videos})
}

func (s *server) youtubeStats(c *fiber.Ctx) error {
	stats, err := s.store.YouTubeStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
