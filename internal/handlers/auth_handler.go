package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Start(c *fiber.Ctx) error {
	var req dto.StartAuthRequest
	if len(c.Body()) > 0 {
		if handled, err := bindBody(c, &req); handled {
			return err
		}
	}

	provider := models.AuthProvider(c.Params("provider"))
	result, err := h.authService.GetAuthURL(provider, req.RedirectURI)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedProvider) {
			return errorJSON(c, fiber.StatusNotFound, "Unsupported provider")
		}
		slog.Error("failed to start social login", "provider", provider, "action", "start", "error", err,
			"request_id", requestID(c))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(dto.StartAuthResponse{AuthURL: result.AuthURL, State: result.State})
}

func (h *AuthHandler) Exchange(c *fiber.Ctx) error {
	var req dto.ExchangeRequest
	if handled, err := bindBody(c, &req); handled {
		return err
	}

	provider := models.AuthProvider(c.Params("provider"))
	result, err := h.authService.Exchange(c.UserContext(), provider, req.Code, req.RedirectURI, req.State)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedProvider):
			return errorJSON(c, fiber.StatusNotFound, "Unsupported provider")
		case errors.Is(err, services.ErrStateMismatch):
			return errorJSON(c, fiber.StatusBadRequest, "Invalid or expired state")
		case errors.Is(err, services.ErrExchangeFailed):
			return errorJSON(c, fiber.StatusBadRequest, "Social code exchange failed")
		}
		slog.Error("social login failed", "provider", provider, "action", "exchange", "error", err,
			"request_id", requestID(c))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(dto.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         dto.NewUserResponse(result.User),
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if handled, err := bindBody(c, &req); handled {
		return err
	}

	pair, err := h.authService.Rotate(c.UserContext(), req.RefreshToken)
	if err != nil {
		if isRefreshFailure(err) {
			return errorJSON(c, fiber.StatusUnauthorized, "Refresh token invalid")
		}
		slog.Error("refresh rotation failed", "action", "rotate", "error", err, "request_id", requestID(c))
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(dto.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if handled, err := bindBody(c, &req); handled {
		return err
	}

	if err := h.authService.Revoke(c.UserContext(), req.RefreshToken); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return errorJSON(c, fiber.StatusBadRequest, "Unable to revoke refresh token")
		}
		slog.Error("logout failed", "action", "logout", "error", err, "request_id", requestID(c))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func isRefreshFailure(err error) bool {
	return errors.Is(err, services.ErrInvalidToken) ||
		errors.Is(err, services.ErrTokenExpired) ||
		errors.Is(err, services.ErrUnknownToken) ||
		errors.Is(err, services.ErrUnknownSubject)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
