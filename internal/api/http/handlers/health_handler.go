package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/persistence"
)

const readinessProbeTimeout = 2 * time.Second

// HealthHandler answers liveness and readiness probes. Readiness requires
// both backing stores: Postgres holds the complaint ledger and Redis holds
// the sessions, so the service cannot do useful work without either.
type HealthHandler struct {
	service  string
	version  string
	postgres *persistence.Postgres
	redis    *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(service, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{service: service, version: version, postgres: postgres, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.service,
		"version": h.version,
	})
}

// Ready handles GET /health/ready, pinging each dependency with a short
// deadline so a hung store cannot stall the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), readinessProbeTimeout)
	defer cancel()

	probes := []struct {
		name string
		ping func(context.Context) error
	}{
		{"postgres", h.postgres.Ping},
		{"redis", h.redis.Ping},
	}

	deps := fiber.Map{}
	healthy := true
	for _, probe := range probes {
		if err := probe.ping(ctx); err != nil {
			deps[probe.name] = err.Error()
			healthy = false
			continue
		}
		deps[probe.name] = "ok"
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": deps,
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": deps,
	})
}
