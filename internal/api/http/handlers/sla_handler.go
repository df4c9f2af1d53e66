package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nebuladesk/helpdesk/internal/api/dto"
	"github.com/nebuladesk/helpdesk/internal/auth"
	"github.com/nebuladesk/helpdesk/internal/service"
	"github.com/nebuladesk/helpdesk/internal/worker"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// SLAHandler serves SLA dashboard, policy, and sweep endpoints.
type SLAHandler struct {
	slaService *service.SLAService
	sweeper    *worker.BreachSweeper
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService, sweeper *worker.BreachSweeper) *SLAHandler {
	return &SLAHandler{slaService: slaService, sweeper: sweeper}
}

// Dashboard GET /sla/dashboard.
//
// Always returns a valid payload; aggregation failures degrade to an empty
// zeroed result rather than an error page.
func (h *SLAHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": h.slaService.Dashboard(c.Context(), actor)})
}

// Policies GET /sla/policies.
func (h *SLAHandler) Policies(c *fiber.Ctx) error {
	policies, err := h.slaService.Policies(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SLAPolicyResponse, 0, len(policies))
	for _, policy := range policies {
		items = append(items, dto.SLAPolicyResponse{
			Priority:            policy.Priority,
			ResponseTimeHours:   policy.ResponseTimeHours,
			ResolutionTimeHours: policy.ResolutionTimeHours,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// RunSweep POST /sla/sweep. Admin-only manual trigger.
func (h *SLAHandler) RunSweep(c *fiber.Ctx) error {
	result, err := h.sweeper.RunOnce(c.Context())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		Processed: result.Processed,
		Errors:    result.Errors,
	}})
}
