package sla

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

type stubPolicySource struct {
	policies map[domain.TicketPriority]*domain.SLAPolicy
	err      error
}

func (s *stubPolicySource) FindByPriority(_ context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.policies[priority], nil
}

func seededPolicies() *stubPolicySource {
	return &stubPolicySource{policies: map[domain.TicketPriority]*domain.SLAPolicy{
		domain.TicketPriorityUrgent: {Priority: domain.TicketPriorityUrgent, ResponseTimeHours: 1, ResolutionTimeHours: 4},
		domain.TicketPriorityHigh:   {Priority: domain.TicketPriorityHigh, ResponseTimeHours: 2, ResolutionTimeHours: 8},
		domain.TicketPriorityMedium: {Priority: domain.TicketPriorityMedium, ResponseTimeHours: 4, ResolutionTimeHours: 24},
		domain.TicketPriorityLow:    {Priority: domain.TicketPriorityLow, ResponseTimeHours: 8, ResolutionTimeHours: 48},
	}}
}

func TestDueDateAddsResolutionWindow(t *testing.T) {
	calc := NewCalculator(seededPolicies())
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		priority domain.TicketPriority
		want     time.Time
	}{
		{domain.TicketPriorityUrgent, createdAt.Add(4 * time.Hour)},
		{domain.TicketPriorityHigh, createdAt.Add(8 * time.Hour)},
		{domain.TicketPriorityMedium, createdAt.Add(24 * time.Hour)},
		{domain.TicketPriorityLow, createdAt.Add(48 * time.Hour)},
	}
	for _, tc := range cases {
		due, err := calc.DueDate(context.Background(), tc.priority, createdAt)
		require.NoError(t, err)
		require.NotNil(t, due)
		assert.True(t, tc.want.Equal(*due), "priority %s", tc.priority)
	}
}

func TestDueDateDeterministic(t *testing.T) {
	calc := NewCalculator(seededPolicies())
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := calc.DueDate(context.Background(), domain.TicketPriorityHigh, createdAt)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := calc.DueDate(context.Background(), domain.TicketPriorityHigh, createdAt)
		require.NoError(t, err)
		assert.True(t, first.Equal(*again))
	}
}

func TestDueDateNoPolicy(t *testing.T) {
	calc := NewCalculator(&stubPolicySource{policies: map[domain.TicketPriority]*domain.SLAPolicy{}})

	due, err := calc.DueDate(context.Background(), domain.TicketPriorityMedium, time.Now())
	require.NoError(t, err)
	assert.Nil(t, due)
}

func TestDueDatePolicyLookupError(t *testing.T) {
	calc := NewCalculator(&stubPolicySource{err: errors.New("connection refused")})

	due, err := calc.DueDate(context.Background(), domain.TicketPriorityMedium, time.Now())
	assert.Error(t, err)
	assert.Nil(t, due)
}
