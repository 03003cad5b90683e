package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	providers []string
}

func NewHealthHandler(db *gorm.DB, providers []string) *HealthHandler {
	return &HealthHandler{db: db, providers: providers}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus := "ok", "ok"
	if err := database.Ping(h.db); err != nil {
		status, dbStatus = "degraded", "unhealthy: "+err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Providers: h.providers,
	})
}
