package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func (s *APIServer) handleOAuthProtectedResource(c *fiber.Ctx) error {
	resource := s.deps.ResourceID
	if resource == "" {
		resource = strings.TrimRight(s.deps.BaseURL, "/")
	}
	servers := []string{}
	if s.deps.AuthorizationServer != "" {
		servers = append(servers, s.deps.AuthorizationServer)
	}

	return c.JSON(fiber.Map{
		"authorization_servers":    servers,
		"bearer_methods_supported": []string{"header"},
		"resource":                 resource,
		"scopes_supported":         []string{},
	})
}
