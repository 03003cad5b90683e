package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	identities *services.IdentityService
	cache      *middleware.UserCache
}

func NewUserHandler(identities *services.IdentityService, cache *middleware.UserCache) *UserHandler {
	return &UserHandler{identities: identities, cache: cache}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}

	var req dto.UpdateProfileRequest
	if handled, err := bindBody(c, &req); handled {
		return err
	}

	updated, err := h.identities.UpdateProfile(c.UserContext(), user.ID, services.ProfileUpdate{
		Description: req.Description,
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		slog.Error("profile update failed", "user_id", user.ID, "action", "update_profile", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
	h.cache.Invalidate(user.ID)

	return c.JSON(dto.NewUserResponse(updated))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}

	user, err := h.identities.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "User not found")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(dto.NewPublicUserResponse(user))
}
