package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness plus the state of its backing
// stores. Redis being down degrades but does not fail the check.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	data := map[string]string{"database": "up", "redis": "up"}
	status := fiber.StatusOK

	if h.db == nil || h.db.Ping(ctx) != nil {
		data["database"] = "down"
		status = fiber.StatusServiceUnavailable
	}
	if h.cache == nil || h.cache.Ping(ctx) != nil {
		data["redis"] = "down"
	}

	return response.Success(c, status, "", data)
}
