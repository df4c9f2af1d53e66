package domain

import "time"

// SLAPolicy maps a ticket priority to its committed response and resolution
// windows. At most one row exists per priority. The table is seeded at
// deployment and read-only at runtime.
type SLAPolicy struct {
	ID                  string
	Priority            TicketPriority
	ResponseTimeHours   int
	ResolutionTimeHours int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ResolutionWindow returns the resolution commitment as a duration.
func (p SLAPolicy) ResolutionWindow() time.Duration {
	return time.Duration(p.ResolutionTimeHours) * time.Hour
}
