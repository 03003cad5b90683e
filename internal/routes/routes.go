package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Deps is everything the route table needs.
type Deps struct {
	AccessSecret string
	// LimiterStorage backs the rate limiters; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	Users          middleware.UserLoader
	UserCache      *middleware.UserCache

	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

func Setup(app *fiber.App, d Deps) {
	// Root health check for load balancers; not rate limited.
	app.Get("/health", d.Health.Check)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "api:" + c.IP() },
		Storage:           d.LimiterStorage,
	}))

	api.Get("/health", d.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           d.LimiterStorage,
	}))
	auth.Post("/refresh", d.Auth.Refresh)
	auth.Post("/logout", d.Auth.Logout)
	auth.Post("/:provider/start", d.Auth.Start)
	auth.Post("/:provider/exchange", d.Auth.Exchange)

	authenticated := []fiber.Handler{
		middleware.JWTProtected(d.AccessSecret),
		middleware.CurrentUser(d.Users, d.UserCache),
	}

	users := api.Group("/users")
	users.Get("/me", append(authenticated, d.User.Me)...)
	users.Patch("/me", append(authenticated, d.User.UpdateMe)...)
	users.Get("/:id", d.User.Get)

	admin := api.Group("/admin", append(authenticated, middleware.RequireRole(models.RoleAdmin))...)
	admin.Post("/users/:id/revoke-tokens", d.Admin.RevokeTokens)
}
