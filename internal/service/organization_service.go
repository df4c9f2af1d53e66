package service

import (
	"context"
	"strings"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/repository"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// OrganizationService manages tenant records. All mutations are admin-only,
// enforced at the routing layer.
type OrganizationService struct {
	orgs repository.OrganizationRepository
}

// NewOrganizationService constructs the service.
func NewOrganizationService(orgs repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgs: orgs}
}

// CreateOrganization registers a new tenant.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	org := &domain.Organization{Name: name}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// RenameOrganization updates the tenant name.
func (s *OrganizationService) RenameOrganization(ctx context.Context, id, name string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	org, err := s.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Name = name
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// GetOrganization fetches one tenant.
func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations pages through tenants.
func (s *OrganizationService) ListOrganizations(ctx context.Context, limit, offset int) ([]domain.Organization, error) {
	orgs, err := s.orgs.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orgs, nil
}
