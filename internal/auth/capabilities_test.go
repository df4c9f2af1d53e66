package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

func TestCanAdmin(t *testing.T) {
	admin := &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin}
	ticket := &domain.Ticket{ID: uuid.NewString(), OrganizationID: uuid.NewString(), RequesterID: uuid.NewString()}

	for _, action := range []Action{ActionViewTicket, ActionTransitionTicket, ActionEditTicket, ActionAssignTicket, ActionCommentTicket} {
		assert.True(t, Can(admin, action, ticket), "action %s", action)
	}
}

func TestCanStaffScopedToOrganization(t *testing.T) {
	orgID := uuid.NewString()
	otherOrg := uuid.NewString()
	ticket := &domain.Ticket{ID: uuid.NewString(), OrganizationID: orgID, RequesterID: uuid.NewString()}

	for _, role := range []domain.Role{domain.RoleOwner, domain.RoleAgent} {
		inside := &domain.User{ID: uuid.NewString(), Role: role, OrganizationID: &orgID}
		outside := &domain.User{ID: uuid.NewString(), Role: role, OrganizationID: &otherOrg}
		orphan := &domain.User{ID: uuid.NewString(), Role: role}

		assert.True(t, Can(inside, ActionEditTicket, ticket), "role %s", role)
		assert.False(t, Can(outside, ActionEditTicket, ticket), "role %s", role)
		assert.False(t, Can(orphan, ActionViewTicket, ticket), "role %s", role)
	}
}

func TestCanCustomerOwnTicket(t *testing.T) {
	orgID := uuid.NewString()
	customer := &domain.User{ID: uuid.NewString(), Role: domain.RoleCustomer, OrganizationID: &orgID}
	own := &domain.Ticket{ID: uuid.NewString(), OrganizationID: orgID, RequesterID: customer.ID}
	foreign := &domain.Ticket{ID: uuid.NewString(), OrganizationID: orgID, RequesterID: uuid.NewString()}

	assert.True(t, Can(customer, ActionViewTicket, own))
	assert.True(t, Can(customer, ActionCommentTicket, own))
	assert.True(t, Can(customer, ActionTransitionTicket, own))
	assert.False(t, Can(customer, ActionEditTicket, own))
	assert.False(t, Can(customer, ActionAssignTicket, own))

	assert.False(t, Can(customer, ActionViewTicket, foreign))
	assert.False(t, Can(customer, ActionCommentTicket, foreign))
}

func TestCanNilInputs(t *testing.T) {
	ticket := &domain.Ticket{ID: uuid.NewString()}
	actor := &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin}

	assert.False(t, Can(nil, ActionViewTicket, ticket))
	assert.False(t, Can(actor, ActionViewTicket, nil))
}
