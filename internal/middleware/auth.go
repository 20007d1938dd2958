// Package middleware provides authentication and request-context middleware
// for the application.
package middleware

import (
	"strings"

	"newsdesk/internal/observability"
	"newsdesk/internal/session"

	"github.com/gofiber/fiber/v2"
)

var provider session.Provider

// Init initializes authentication middleware with the session provider.
func Init(p session.Provider) {
	provider = p
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	identity, err := provider.VerifyToken(parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals("identity", identity)
	c.Locals("userID", identity.ID)

	// ContextMiddleware runs before route-level auth, so the user id has to
	// reach the logging context here.
	c.SetUserContext(observability.WithUserID(c.UserContext(), identity.ID))

	return c.Next()
}
