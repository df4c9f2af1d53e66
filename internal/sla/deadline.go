package sla

import (
	"context"
	"time"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

// PolicySource provides read-only access to SLA policies. FindByPriority
// returns (nil, nil) when no policy row exists for the priority; having no
// policy is not an error, the ticket simply carries no deadline.
type PolicySource interface {
	FindByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
}

// Calculator derives SLA due dates from the policy table.
type Calculator struct {
	policies PolicySource
}

// NewCalculator constructs a Calculator.
func NewCalculator(policies PolicySource) *Calculator {
	return &Calculator{policies: policies}
}

// DueDate returns createdAt plus the resolution window of the policy for the
// given priority, or nil when no policy exists. Resolution windows are plain
// hours with no business-hour or timezone adjustment.
func (c *Calculator) DueDate(ctx context.Context, priority domain.TicketPriority, createdAt time.Time) (*time.Time, error) {
	policy, err := c.policies.FindByPriority(ctx, priority)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, nil
	}
	due := createdAt.Add(policy.ResolutionWindow())
	return &due, nil
}
