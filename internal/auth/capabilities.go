package auth

import "github.com/nebuladesk/helpdesk/internal/domain"

// Action enumerates capabilities checked against tickets.
type Action string

const (
	ActionViewTicket       Action = "ticket.view"
	ActionTransitionTicket Action = "ticket.transition"
	ActionEditTicket       Action = "ticket.edit"
	ActionAssignTicket     Action = "ticket.assign"
	ActionCommentTicket    Action = "ticket.comment"
)

// Can decides whether the actor may perform the action on the ticket.
//
// Admins are platform-wide. Owners and agents act on any ticket inside their
// own organization. Customers may view and comment on tickets they raised,
// and may transition only their own tickets (e.g. closing a resolved one).
func Can(actor *domain.User, action Action, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOwner, domain.RoleAgent:
		return actor.OrganizationID != nil && *actor.OrganizationID == ticket.OrganizationID
	case domain.RoleCustomer:
		if ticket.RequesterID != actor.ID {
			return false
		}
		switch action {
		case ActionViewTicket, ActionCommentTicket, ActionTransitionTicket:
			return true
		}
		return false
	}
	return false
}
