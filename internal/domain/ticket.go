package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidStatus reports whether the value is a recognized ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// IsTerminal reports whether the status excludes the ticket from periodic
// breach scanning. Only the transition into a terminal status re-evaluates
// breach state for such tickets.
func IsTerminal(s TicketStatus) bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ValidPriority reports whether the value is a recognized priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// SLADueDate is set once at creation from the SLA policy matching the
// ticket's priority and is never recalculated, even when the priority
// changes later. A nil SLADueDate permanently exempts the ticket from
// breach evaluation.
type Ticket struct {
	ID             string
	ExternalKey    string
	OrganizationID string
	RequesterID    string
	AssigneeID     *string
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	SLADueDate     *time.Time
	SLABreached    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}
