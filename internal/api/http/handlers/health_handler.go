package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/internship-portal/internal/observability"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. Only Postgres gates readiness; Redis carries
// notifications alone, so an outage there is reported as degraded.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	if err := ping(ctx, h.postgres); err != nil {
		depStatus["postgres"] = err.Error()
		depStatus["redis"] = redisStatus(ctx, h.redis)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "postgres unavailable",
				"details": depStatus,
			},
		})
	}
	depStatus["postgres"] = "ok"

	status := "ready"
	depStatus["redis"] = redisStatus(ctx, h.redis)
	if depStatus["redis"] != "ok" {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":       status,
		"dependencies": depStatus,
	})
}

var errNotConfigured = errors.New("not configured")

func ping(ctx context.Context, dep Pinger) error {
	if dep == nil {
		return errNotConfigured
	}
	return dep.Ping(ctx)
}

func redisStatus(ctx context.Context, redis Pinger) string {
	if err := ping(ctx, redis); err != nil {
		return "degraded: " + err.Error()
	}
	return "ok"
}

// Metrics exposes the in-memory request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
