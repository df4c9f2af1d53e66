package sla

import (
	"time"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

// EvaluateBreach decides the sla_breached flag for a ticket. It is the single
// source of truth for the breach rule; both the status transition path and the
// periodic sweep go through it.
//
// status is the ticket's status after the transition being applied, breached
// the flag before evaluation. The rules, in precedence order:
//
//  1. No due date: the flag is left as-is; such tickets are never breached.
//  2. Terminal status (resolved/closed): breached exactly when now is past the
//     due date at the moment of the transition. A ticket resolved in time has
//     its flag cleared even if a sweep set it earlier.
//  3. Non-terminal status: a ticket past due becomes breached; otherwise the
//     flag stays as-is. This path never un-breaches.
func EvaluateBreach(now time.Time, dueDate *time.Time, status domain.TicketStatus, breached bool) bool {
	if dueDate == nil {
		return breached
	}
	if domain.IsTerminal(status) {
		return now.After(*dueDate)
	}
	if now.After(*dueDate) {
		return true
	}
	return breached
}
