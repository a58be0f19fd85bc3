package middleware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ignitus-mcp/internal/utils"
)

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// ResourceID is the expected audience for token validation
	ResourceID string
	// TokenValidator is a function that validates the bearer token
	// It should return an error if the token is invalid
	TokenValidator func(token string, audience []string) error
	// JWTAuthenticator for JWT token validation (optional, takes precedence over TokenValidator)
	JWTAuthenticator *utils.JwtAuthenticator
	// ResourceMetadata is the protected resource metadata URL sent in WWW-Authenticate
	ResourceMetadata string
	// SkipWellKnown determines if .well-known endpoints should bypass auth
	SkipWellKnown bool
}

// DefaultAuthConfig provides default configuration
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		SkipWellKnown:  true,
		TokenValidator: rejectAll,
	}
}

func rejectAll(token string, audience []string) error {
	return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
}

// AuthMiddleware returns a Fiber middleware for Bearer token authentication
func AuthMiddleware(config ...AuthConfig) fiber.Handler {
	cfg := DefaultAuthConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.TokenValidator == nil {
		cfg.TokenValidator = rejectAll
	}

	challenge := `Bearer realm="Access to protected resource"`
	if cfg.ResourceMetadata != "" {
		challenge = fmt.Sprintf(`Bearer realm="OAuth", resource_metadata="%s"`, cfg.ResourceMetadata)
	}

	unauthorized := func(c *fiber.Ctx, body fiber.Map) error {
		c.Set("WWW-Authenticate", challenge)
		return c.Status(fiber.StatusUnauthorized).JSON(body)
	}

	return func(c *fiber.Ctx) error {
		// Allow public access to well-known endpoints for metadata discovery
		if cfg.SkipWellKnown && strings.Contains(c.Path(), ".well-known") {
			return c.Next()
		}

		token, ok := strings.CutPrefix(c.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return unauthorized(c, fiber.Map{"error": "Missing or invalid Bearer token"})
		}

		if cfg.JWTAuthenticator == nil {
			var audience []string
			if cfg.ResourceID != "" {
				audience = []string{cfg.ResourceID}
			}
			if err := cfg.TokenValidator(token, audience); err != nil {
				return unauthorized(c, fiber.Map{"error": "Invalid token"})
			}
			return c.Next()
		}

		user, err := cfg.JWTAuthenticator.ValidateToken(token)
		if err != nil {
			return unauthorized(c, fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}
		if cfg.ResourceID != "" && !slices.Contains(user.Aud, cfg.ResourceID) {
			return unauthorized(c, fiber.Map{"error": "Invalid audience"})
		}

		c.Locals("user", user)
		c.SetUserContext(utils.WithAuthenticatedUser(c.UserContext(), user))
		return c.Next()
	}
}

// GetAuthenticatedUser retrieves the authenticated user from Fiber context
// Returns nil if no user is found or if user is not of correct type
func GetAuthenticatedUser(c *fiber.Ctx) *utils.AuthenticatedUser {
	user, ok := c.Locals("user").(*utils.AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
