package domain

import "time"

// Organization is the unit of multi-tenant isolation.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
