package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
)

const defaultNotificationLimit = 20

func (s *APIServer) handleNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultNotificationLimit)
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	notifications := []notify.Notification{}
	if s.deps.Notifier != nil {
		notifications = append(notifications, s.deps.Notifier.List(limit)...)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}
