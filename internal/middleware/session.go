package middleware

import (
	"kicks/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionSource reports the logged in user, or nil.
type SessionSource interface {
	CurrentUser() *models.User
}

// SessionRequired is a Fiber middleware rejecting requests made without a
// logged in user.
func SessionRequired(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := sessions.CurrentUser()
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please login first",
			})
		}

		// Store the session email in Fiber context for subsequent handlers
		c.Locals("email", user.Email)

		return c.Next()
	}
}
