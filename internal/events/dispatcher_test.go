package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var statusCalls, createdCalls int
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, ActivityEvent) error {
		statusCalls++
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, ActivityEvent) error {
		createdCalls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), ActivityEvent{Type: EventStatusChanged}))

	assert.Equal(t, 1, statusCalls)
	assert.Equal(t, 0, createdCalls)
}

func TestDispatcherCatchAllRunsAfterSpecific(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var order []string
	dispatcher.SubscribeAll(func(context.Context, ActivityEvent) error {
		order = append(order, "all")
		return nil
	})
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, ActivityEvent) error {
		order = append(order, "specific")
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), ActivityEvent{Type: EventStatusChanged}))

	assert.Equal(t, []string{"specific", "all"}, order)
}

func TestDispatcherContinuesPastHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var reached bool
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, ActivityEvent) error {
		return errors.New("handler blew up")
	})
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, ActivityEvent) error {
		reached = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), ActivityEvent{Type: EventStatusChanged}))

	assert.True(t, reached, "one failing handler must not starve the rest")
}

func TestDispatcherUnsubscribedTypeIsNoOp(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), ActivityEvent{Type: EventTicketAccepted}))
}
