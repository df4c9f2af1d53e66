package domain

import "time"

// Role enumerates the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// ValidRole reports whether the value is a recognized role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleAgent, RoleCustomer:
		return true
	}
	return false
}

// User is the domain model for all accounts: customers who raise tickets
// and the staff who work them. Admins are platform-level and may have no
// organization.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
