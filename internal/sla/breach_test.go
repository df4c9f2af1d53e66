package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nebuladesk/helpdesk/internal/domain"
)

func TestEvaluateBreachNoDueDate(t *testing.T) {
	now := time.Now()

	assert.False(t, EvaluateBreach(now, nil, domain.TicketStatusOpen, false))
	assert.True(t, EvaluateBreach(now, nil, domain.TicketStatusOpen, true))
	assert.False(t, EvaluateBreach(now, nil, domain.TicketStatusClosed, false))
}

func TestEvaluateBreachOverdueNonTerminal(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	assert.True(t, EvaluateBreach(now, &past, domain.TicketStatusOpen, false))
	assert.True(t, EvaluateBreach(now, &past, domain.TicketStatusInProgress, false))
}

func TestEvaluateBreachNotYetDue(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	assert.False(t, EvaluateBreach(now, &future, domain.TicketStatusOpen, false))
	// The non-terminal path never clears an existing flag.
	assert.True(t, EvaluateBreach(now, &future, domain.TicketStatusInProgress, true))
}

func TestEvaluateBreachTerminalPastDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	assert.True(t, EvaluateBreach(now, &past, domain.TicketStatusResolved, false))
	assert.True(t, EvaluateBreach(now, &past, domain.TicketStatusClosed, false))
}

func TestEvaluateBreachTerminalInTimeClearsFlag(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)

	// Closing before the deadline clears a flag a sweep may have set
	// from an earlier, since-extended due date.
	assert.False(t, EvaluateBreach(now, &future, domain.TicketStatusResolved, true))
	assert.False(t, EvaluateBreach(now, &future, domain.TicketStatusClosed, true))
	assert.False(t, EvaluateBreach(now, &future, domain.TicketStatusResolved, false))
}

func TestEvaluateBreachExactlyAtDueDate(t *testing.T) {
	now := time.Now()
	due := now

	// now == due is not past due.
	assert.False(t, EvaluateBreach(now, &due, domain.TicketStatusOpen, false))
	assert.False(t, EvaluateBreach(now, &due, domain.TicketStatusResolved, true))
}

func TestEvaluateBreachDeterministic(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	first := EvaluateBreach(now, &past, domain.TicketStatusOpen, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EvaluateBreach(now, &past, domain.TicketStatusOpen, false))
	}
}
