package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/routes"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/storage/redis/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// loadConfig reads and validates configuration and sets up stdout logging.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv == "development")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer database.Close(database.DB)

	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.Setup(cfg.AppEnv == "development", pgLogHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Log cleanup (30-day retention)
	logging.StartCleanup(ctx, database.DB)

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	stack, err := newAuthStack(cfg, database.DB, m)
	if err != nil {
		return err
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})
	app.Use(m.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		store := redis.New(redis.Config{URL: cfg.RedisURL})
		defer store.Close()
		limiterStorage = store
		slog.Info("rate limiter using redis")
	}

	userCache := middleware.NewUserCache(30 * time.Second)
	var providerNames []string
	for _, name := range stack.providers.Names() {
		providerNames = append(providerNames, string(name))
	}

	routes.Setup(app, routes.Deps{
		AccessSecret:   cfg.JWTSecret,
		LimiterStorage: limiterStorage,
		Users:          stack.identities,
		UserCache:      userCache,
		Auth:           handlers.NewAuthHandler(stack.auth),
		User:           handlers.NewUserHandler(stack.identities, userCache),
		Admin:          handlers.NewAdminHandler(stack.auth, userCache),
		Health:         handlers.NewHealthHandler(database.DB, providerNames),
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "providers", providerNames)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		pgLogHandler.Stop()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	pgLogHandler.Stop()

	slog.Info("server stopped")
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
