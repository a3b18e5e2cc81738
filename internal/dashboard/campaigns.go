package dashboard

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"creatorscope/internal/logging"
	"creatorscope/internal/store"
)

type campaignUpdate struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (s *server) listCampaigns(platform store.Platform) fiber.Handler {
	return func(c *fiber.Ctx) error {
		campaigns, err := s.store.ListCampaigns(c.UserContext(), platform)
		if err != nil {
			return err
		}
		return c.JSON(campaigns)
	}
}

func (s *server) campaignStats(platform store.Platform) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := s.store.CampaignStats(c.UserContext(), platform)
		if err != nil {
			return err
		}
		return c.JSON(stats)
	}
}

// updateCampaign validates the status before touching the store.
func (s *server) updateCampaign(platform store.Platform) fiber.Handler {
	keyField, notFound := "username", "Creator not found"
	if platform == store.PlatformYouTube {
		keyField, notFound = "channelId", "Channel not found"
	}
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("id"))
		var body campaignUpdate
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Unable to parse json")
		}
		status, err := store.ParseCampaignStatus(body.Status)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status. Must be one of: "+store.CampaignStatusNames())
		}
		campaign, err := s.store.SetCampaignStatus(c.UserContext(), platform, id, status, body.Notes)
		switch {
		case errors.Is(err, store.ErrUnknownCreator):
			return fiber.NewError(fiber.StatusNotFound, notFound)
		case errors.Is(err, store.ErrMissingKey):
			return fiber.NewError(fiber.StatusBadRequest, "Missing creator id")
		case err != nil:
			return err
		}
		s.logger.Info("campaign status updated",
			logging.String(logging.FieldEventType, "campaign_updated"),
			logging.String(logging.FieldPlatform, string(platform)),
			logging.String(logging.FieldCreatorID, campaign.CreatorID),
			logging.String("status", string(campaign.Status)),
		)
		return c.JSON(fiber.Map{
			"success":    true,
			keyField:     campaign.CreatorID,
			"status":     campaign.Status,
			"notes":      campaign.Notes,
			"updated_at": campaign.UpdatedAt,
		})
	}
}
