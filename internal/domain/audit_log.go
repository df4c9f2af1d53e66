package domain

import "time"

// AuditAction identifies what kind of change an audit entry records.
type AuditAction string

const (
	AuditTicketCreated         AuditAction = "ticket.created"
	AuditTicketStatusChanged   AuditAction = "ticket.status_changed"
	AuditTicketPriorityChanged AuditAction = "ticket.priority_changed"
	AuditTicketAssigned        AuditAction = "ticket.assigned"
)

// AuditLog is an append-only record of a mutation.
type AuditLog struct {
	ID        string
	ActorID   *string
	Action    AuditAction
	TicketID  string
	OldValue  map[string]any
	NewValue  map[string]any
	CreatedAt time.Time
}
