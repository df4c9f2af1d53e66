package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nebuladesk/helpdesk/internal/api/dto"
	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/service"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// OrganizationsHandler manages tenant endpoints.
type OrganizationsHandler struct {
	service *service.OrganizationService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(orgService *service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{service: orgService}
}

// CreateOrganization POST /organizations.
func (h *OrganizationsHandler) CreateOrganization(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	org, err := h.service.CreateOrganization(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": organizationResponse(org)})
}

// RenameOrganization PATCH /organizations/:id.
func (h *OrganizationsHandler) RenameOrganization(c *fiber.Ctx) error {
	var req dto.RenameOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	org, err := h.service.RenameOrganization(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// GetOrganization GET /organizations/:id.
func (h *OrganizationsHandler) GetOrganization(c *fiber.Ctx) error {
	org, err := h.service.GetOrganization(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// ListOrganizations GET /organizations.
func (h *OrganizationsHandler) ListOrganizations(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	orgs, err := h.service.ListOrganizations(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, organizationResponse(&orgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func organizationResponse(org *domain.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}
