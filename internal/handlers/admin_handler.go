package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	authService *services.AuthService
	cache       *middleware.UserCache
}

func NewAdminHandler(authService *services.AuthService, cache *middleware.UserCache) *AdminHandler {
	return &AdminHandler{authService: authService, cache: cache}
}

// RevokeTokens signs a user out everywhere. Access tokens already issued
// stay valid until they expire.
func (h *AdminHandler) RevokeTokens(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid user id")
	}

	if err := h.authService.RevokeAll(c.UserContext(), id); err != nil {
		slog.Error("revoke all failed", "user_id", id, "action", "revoke_all", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
	h.cache.Invalidate(id)

	return c.SendStatus(fiber.StatusNoContent)
}
