package dto

import "time"

// CreateOrganizationRequest payload.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// RenameOrganizationRequest payload.
type RenameOrganizationRequest struct {
	Name string `json:"name"`
}

// OrganizationResponse response.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
