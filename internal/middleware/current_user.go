package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const currentUserLocal = "current_user"

type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserCache keeps recently loaded users so authenticated requests do not
// hit the users table every time.
type UserCache struct {
	c *gocache.Cache
}

func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{c: gocache.New(ttl, time.Minute)}
}

func (u *UserCache) get(id uuid.UUID) (*models.User, bool) {
	v, ok := u.c.Get(id.String())
	if !ok {
		return nil, false
	}
	user, ok := v.(models.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

func (u *UserCache) set(user *models.User) {
	u.c.SetDefault(user.ID.String(), *user)
}

// Invalidate drops id so the next request reloads it.
func (u *UserCache) Invalidate(id uuid.UUID) {
	u.c.Delete(id.String())
}

// CurrentUser loads the token subject into the request. It must run after
// JWTProtected. A token whose user no longer exists is rejected.
func CurrentUser(users UserLoader, cache *UserCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if user, ok := cache.get(id); ok {
			c.Locals(currentUserLocal, user)
			return c.Next()
		}

		user, err := users.FindByID(c.UserContext(), id)
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Authentication required",
			})
		}
		if err != nil {
			slog.Error("failed to load current user", "user_id", id, "error", err)
			return fiber.ErrInternalServerError
		}

		cache.set(user)
		c.Locals(currentUserLocal, user)
		return c.Next()
	}
}

func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(currentUserLocal).(*models.User)
	return user, ok && user != nil
}
