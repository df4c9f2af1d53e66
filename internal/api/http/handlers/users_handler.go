package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nebuladesk/helpdesk/internal/api/dto"
	"github.com/nebuladesk/helpdesk/internal/auth"
	"github.com/nebuladesk/helpdesk/internal/service"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// UsersHandler manages staff user-management endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// ListMembers GET /users. Lists accounts of an organization; staff default
// to their own tenant, admins pass organization_id explicitly.
func (h *UsersHandler) ListMembers(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	orgID := c.Query("organization_id")
	if orgID == "" && actor.OrganizationID != nil {
		orgID = *actor.OrganizationID
	}
	if orgID == "" {
		return apperrors.NewValidationError("organization_id required", nil)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	members, err := h.service.ListMembers(c.Context(), actor, orgID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(members))
	for i := range members {
		items = append(items, userResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignRole PATCH /users/:id/role. Admin-only.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.AssignRole(c.Context(), c.Params("id"), req.Role, req.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
