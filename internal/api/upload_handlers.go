package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/api/middleware"
)

// handleUpload pins the multipart "file" field and returns its gateway URL.
func (s *APIServer) handleUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return s.sendError(c, fiber.NewError(fiber.StatusBadRequest, "Missing file"))
	}
	file, err := header.Open()
	if err != nil {
		return s.sendError(c, fmt.Errorf("failed to open upload: %w", err))
	}
	defer file.Close()

	var userID *string
	if user := middleware.GetAuthenticatedUser(c); user != nil && user.Sub != "" {
		userID = &user.Sub
	}

	record, err := s.deps.Uploads.Upload(c.UserContext(), userID, header.Filename, header.Size, file)
	if err != nil {
		s.notifyError(err)
		return s.sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
