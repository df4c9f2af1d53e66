package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nebuladesk/helpdesk/internal/observability"
	"github.com/nebuladesk/helpdesk/internal/persistence"
)

// HealthHandler serves liveness, readiness, and counter probes.
type HealthHandler struct {
	pg      *persistence.Postgres
	redis   *persistence.Redis
	metrics *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis, metrics: metrics}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	if h.pg != nil && h.pg.Pool != nil {
		if err := h.pg.Pool.Ping(c.Context()); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Context()); err != nil {
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := "ok"
	code := fiber.StatusOK
	if !healthy {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks})
}

// Counters GET /health/counters. Exposes process-local SLA counters for
// scrape-based monitoring.
func (h *HealthHandler) Counters(c *fiber.Ctx) error {
	breaches, sweeps, sweepErrors := h.metrics.SLACounters()
	return c.JSON(fiber.Map{
		"sla_breaches_total":     breaches,
		"sla_sweep_runs_total":   sweeps,
		"sla_sweep_errors_total": sweepErrors,
	})
}
