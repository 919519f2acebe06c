package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/engine"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *engine.NotificationLog, events.Dispatcher) {
	t.Helper()
	log := engine.NewNotificationLog()
	svc := NewNotificationService(log, zap.NewNop(), observability.NewMetrics())
	dispatcher := events.NewInMemoryDispatcher()
	svc.RegisterHandlers(dispatcher)
	return svc, log, dispatcher
}

func publishedAt() time.Time {
	return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
}

func TestNotificationServiceStatusChanged(t *testing.T) {
	_, log, dispatcher := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.ActivityEvent{
		Type:      events.EventStatusChanged,
		Ticket:    domain.TicketSnapshot{ID: "t1", Title: "vpn down"},
		Timestamp: publishedAt(),
		Payload: events.StatusChangedPayload{
			OldStatus: domain.StatusOpen,
			NewStatus: domain.StatusInService,
		},
	})
	require.NoError(t, err)

	items := log.List()
	require.Len(t, items, 1)
	entry := items[0]
	assert.Equal(t, domain.NotificationStatusChanged, entry.Type)
	assert.Equal(t, `"vpn down" moved from aberto to em_atendimento`, entry.Message)
	require.NotNil(t, entry.TicketID)
	assert.Equal(t, "t1", *entry.TicketID)
	assert.Equal(t, publishedAt(), entry.CreatedAt)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Read)
}

func TestNotificationServiceAssignment(t *testing.T) {
	_, log, dispatcher := newNotificationFixture(t)
	tech := domain.UserRef{ID: "u-tech", Name: "Bruno"}

	require.NoError(t, dispatcher.Publish(context.Background(), events.ActivityEvent{
		Type:      events.EventTicketAssigned,
		Ticket:    domain.TicketSnapshot{ID: "t1", Title: "vpn down"},
		Timestamp: publishedAt(),
		Payload:   events.TicketAssignedPayload{NewAssignee: &tech},
	}))

	items := log.List()
	require.Len(t, items, 1)
	require.NotNil(t, items[0].UserID)
	assert.Equal(t, "u-tech", *items[0].UserID, "the new assignee is the subject")
	assert.Equal(t, `"vpn down" was assigned to Bruno`, items[0].Message)
}

func TestNotificationServiceUnassignment(t *testing.T) {
	_, log, dispatcher := newNotificationFixture(t)

	require.NoError(t, dispatcher.Publish(context.Background(), events.ActivityEvent{
		Type:      events.EventTicketAssigned,
		Ticket:    domain.TicketSnapshot{ID: "t1", Title: "vpn down"},
		Timestamp: publishedAt(),
		Payload:   events.TicketAssignedPayload{},
	}))

	items := log.List()
	require.Len(t, items, 1)
	assert.Nil(t, items[0].UserID)
	assert.Equal(t, `"vpn down" is no longer assigned`, items[0].Message)
}

func TestNotificationServiceCoversEveryEventKind(t *testing.T) {
	_, log, dispatcher := newNotificationFixture(t)
	tech := domain.UserRef{ID: "u-tech", Name: "Bruno"}
	ticket := domain.TicketSnapshot{ID: "t1", Title: "vpn down", CreatedBy: domain.UserRef{ID: "u1", Name: "Ana"}}

	published := []events.ActivityEvent{
		{Type: events.EventTicketCreated, Ticket: ticket, Timestamp: publishedAt()},
		{Type: events.EventStatusChanged, Ticket: ticket, Timestamp: publishedAt(), Payload: events.StatusChangedPayload{OldStatus: domain.StatusOpen, NewStatus: domain.StatusPending}},
		{Type: events.EventTicketAssigned, Ticket: ticket, Timestamp: publishedAt(), Payload: events.TicketAssignedPayload{NewAssignee: &tech}},
		{Type: events.EventQueueTransferred, Ticket: ticket, Timestamp: publishedAt(), Payload: events.QueueTransferredPayload{OldQueue: "suporte", NewQueue: "financeiro"}},
		{Type: events.EventInteractionAdded, Ticket: ticket, Timestamp: publishedAt(), Payload: events.InteractionAddedPayload{Interaction: domain.Interaction{ID: "i1", Author: &tech}}},
		{Type: events.EventTicketAccepted, Ticket: ticket, Timestamp: publishedAt(), Payload: events.TicketAcceptedPayload{Assignee: tech}},
	}
	for _, event := range published {
		require.NoError(t, dispatcher.Publish(context.Background(), event))
	}

	items := log.List()
	require.Len(t, items, len(published), "every event kind produces exactly one entry")

	kinds := make(map[domain.NotificationType]bool, len(items))
	for _, item := range items {
		kinds[item.Type] = true
	}
	assert.Len(t, kinds, len(published))
}

func TestNotificationServiceSessionEntries(t *testing.T) {
	svc, log, _ := newNotificationFixture(t)
	user := domain.UserRef{ID: "u1", Name: "Ana"}

	svc.RecordLogin(user, publishedAt())
	svc.RecordLogout(user, publishedAt().Add(time.Hour))

	items := log.List()
	require.Len(t, items, 2)
	assert.Equal(t, domain.NotificationLogout, items[0].Type)
	assert.Equal(t, domain.NotificationLogin, items[1].Type)
	require.NotNil(t, items[1].UserID)
	assert.Equal(t, "u1", *items[1].UserID)
	assert.Nil(t, items[1].TicketID, "session entries are not ticket-scoped")
}
