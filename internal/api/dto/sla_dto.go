package dto

import "github.com/nebuladesk/helpdesk/internal/domain"

// SLAPolicyResponse is one policy table row.
type SLAPolicyResponse struct {
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   int                   `json:"response_time_hours"`
	ResolutionTimeHours int                   `json:"resolution_time_hours"`
}

// SweepResponse reports one sweep run.
type SweepResponse struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}
