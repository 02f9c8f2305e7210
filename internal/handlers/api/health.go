package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"seoscout/internal/db"
	"seoscout/internal/ratelimit"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db       *db.DB
	redis    *redis.Client // nil when running on the in-memory history store
	governor *ratelimit.Governor
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(database *db.DB, redisClient *redis.Client, governor *ratelimit.Governor) *HealthHandler {
	return &HealthHandler{db: database, redis: redisClient, governor: governor}
}

// Health returns dependency reachability and the governor's window state.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{}

	if err := h.db.Pool.Ping(c.Context()); err != nil {
		checks["database"] = "unreachable"
		status = fiber.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Context()).Err(); err != nil {
			checks["redis"] = "unreachable"
			status = fiber.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	checks["provider_rate"] = fiber.Map{
		"current":   h.governor.CurrentRate(),
		"available": h.governor.AvailableCapacity(),
		"ceiling":   h.governor.Ceiling(),
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
	})
}
