package middleware

import (
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole admits only users whose stored role is role. It must run
// after CurrentUser, so a demoted user loses access once the cache entry
// expires even while holding an older token.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}
		return c.Next()
	}
}
