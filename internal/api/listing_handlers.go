package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/models"
	"github.com/rxtech-lab/ignitus-mcp/internal/services"
)

type donateRequest struct {
	Amount string `json:"amount"`
}

func listingID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid listing id")
	}
	return id, nil
}

func (s *APIServer) handleListVideos(c *fiber.Ctx) error {
	videos, err := s.deps.Videos.ListVideos(c.UserContext())
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(fiber.Map{"videos": nonNil(videos), "total": len(videos)})
}

func (s *APIServer) handleListClosedVideos(c *fiber.Ctx) error {
	videos, err := s.deps.Videos.ListClosedVideos(c.UserContext())
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(fiber.Map{"videos": nonNil(videos), "total": len(videos)})
}

func (s *APIServer) handleCreateVideo(c *fiber.Ctx) error {
	var form services.CreateVideoForm
	if err := c.BodyParser(&form); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	return s.sendAction(c)(s.deps.Videos.CreateVideo(c.UserContext(), form))
}

func (s *APIServer) handleWatchVideo(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return s.sendError(c, err)
	}
	return s.sendAction(c)(s.deps.Videos.WatchVideo(c.UserContext(), id))
}

func (s *APIServer) handlePremiumAccess(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return s.sendError(c, err)
	}
	return s.sendAction(c)(s.deps.Videos.PremiumAccess(c.UserContext(), id))
}

func (s *APIServer) handleListCampaigns(c *fiber.Ctx) error {
	campaigns, err := s.deps.Campaigns.ListCampaigns(c.UserContext())
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(fiber.Map{"campaigns": nonNil(campaigns), "total": len(campaigns)})
}

func (s *APIServer) handleCreateCampaign(c *fiber.Ctx) error {
	var form services.CreateCampaignForm
	if err := c.BodyParser(&form); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	return s.sendAction(c)(s.deps.Campaigns.CreateCampaign(c.UserContext(), form))
}

func (s *APIServer) handleDonate(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return s.sendError(c, err)
	}
	var req donateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	}
	return s.sendAction(c)(s.deps.Campaigns.Donate(c.UserContext(), id, req.Amount))
}

// sendAction writes the outcome of a contract action.
func (s *APIServer) sendAction(c *fiber.Ctx) func(*services.ActionResult, error) error {
	return func(result *services.ActionResult, err error) error {
		if err != nil {
			return s.sendError(c, err)
		}
		return c.JSON(result)
	}
}

func nonNil[T models.Listing](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
