package service

import (
	"context"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/repository"
	"github.com/nebuladesk/helpdesk/pkg/apperrors"
)

// UserService covers staff-facing user management. Self-registration always
// yields customers; privileged roles are granted here by admins.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ListMembers lists accounts of an organization. Admins may inspect any
// tenant; owners and agents only their own.
func (s *UserService) ListMembers(ctx context.Context, actor *domain.User, orgID string, limit, offset int) ([]domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleOwner, domain.RoleAgent:
		if actor.OrganizationID == nil || *actor.OrganizationID != orgID {
			return nil, apperrors.NewForbidden("access denied")
		}
	default:
		return nil, apperrors.NewForbidden("access denied")
	}
	members, err := s.users.ListByOrganization(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// AssignRole sets a user's role and organization. Admin-only, enforced at the
// routing layer. Granting admin keeps the user platform-wide, every other
// role requires an organization.
func (s *UserService) AssignRole(ctx context.Context, userID string, role domain.Role, orgID *string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if role != domain.RoleAdmin && (orgID == nil || *orgID == "") {
		return nil, apperrors.NewValidationError("organization_id required for non-admin roles", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Role = role
	user.OrganizationID = orgID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
