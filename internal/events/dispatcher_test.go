package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventTicketSLABreached, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketSLABreached, TicketID: "t1"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t2"}))

	require.Len(t, received, 1)
	assert.Equal(t, "t1", received[0].TicketID)
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	var secondCalled bool
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.True(t, secondCalled)
}
