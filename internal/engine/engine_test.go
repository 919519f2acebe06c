package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Dependencies{
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	}, 0)
}

func TestEngineAcceptanceCycle(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	ticket := domain.TicketSnapshot{
		ID:        "t1",
		Title:     "vpn down",
		Status:    domain.StatusOpen,
		CreatedBy: domain.UserRef{ID: "u-req", Name: "Requester"},
	}

	baseline := eng.Apply(ctx, []domain.TicketSnapshot{ticket}, diffNow)
	assert.Empty(t, baseline.Events)
	assert.Equal(t, 1, eng.Store().Len())

	tech := domain.UserRef{ID: "u-tech", Name: "Tech"}
	accepted := ticket
	accepted.Status = domain.StatusInService
	accepted.AssignedTo = &tech

	report := eng.Apply(ctx, []domain.TicketSnapshot{accepted}, diffNow.Add(5*time.Second))

	require.Equal(t, []events.EventType{
		events.EventStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketAccepted,
	}, eventTypes(report.Events))

	matrix := eng.TransitionMatrix()
	assert.Equal(t, 1, matrix[domain.StatusOpen][domain.StatusInService])

	stored, ok := eng.Store().Get("t1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusInService, stored.Status)
}

func TestEngineExcludesMalformedTickets(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	good := domain.TicketSnapshot{ID: "t1", Status: domain.StatusOpen}
	noID := domain.TicketSnapshot{Status: domain.StatusOpen}
	noStatus := domain.TicketSnapshot{ID: "t2"}

	report := eng.Apply(ctx, []domain.TicketSnapshot{good, noID, noStatus}, diffNow)

	assert.ElementsMatch(t, []string{"", "t2"}, report.MalformedIDs)
	assert.Equal(t, 1, eng.Store().Len(), "only the well-formed ticket is retained")
	_, ok := eng.Store().Get("t2")
	assert.False(t, ok)
}

func TestEngineSwapsStoreUnconditionally(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	ticket := domain.TicketSnapshot{ID: "t1", Status: domain.StatusOpen}

	eng.Apply(ctx, []domain.TicketSnapshot{ticket}, diffNow)

	// the ticket disappears; no events, but the store follows
	vanished := eng.Apply(ctx, nil, diffNow.Add(time.Second))
	assert.Empty(t, vanished.Events)
	assert.Equal(t, 0, eng.Store().Len())

	// reappearing resets the baseline rather than reporting creation
	back := eng.Apply(ctx, []domain.TicketSnapshot{ticket}, diffNow.Add(2*time.Second))
	assert.Empty(t, back.Events)
	assert.Equal(t, 1, eng.Store().Len())
}

func TestEngineActivityHistory(t *testing.T) {
	eng := New(Dependencies{
		Metrics: observability.NewMetrics(),
		Logger:  zap.NewNop(),
	}, 2)
	ctx := context.Background()
	admin := Viewer{ID: "u-admin", Role: domain.RoleAdmin}

	ticket := domain.TicketSnapshot{ID: "t1", Status: domain.StatusOpen, CreatedBy: domain.UserRef{ID: "u-req"}}
	eng.Apply(ctx, []domain.TicketSnapshot{ticket}, diffNow)

	step := ticket
	for i, status := range []domain.Status{domain.StatusInService, domain.StatusResolved, domain.StatusClosed} {
		step.Status = status
		eng.Apply(ctx, []domain.TicketSnapshot{step}, diffNow.Add(time.Duration(i+1)*time.Second))
	}

	history := eng.ActivityFor(admin)
	require.Len(t, history, 2, "history is trimmed to its limit")
	newest, ok := history[0].Payload.(events.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusClosed, newest.NewStatus, "newest first")
}

func TestEngineActivityRespectsVisibility(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	ticket := domain.TicketSnapshot{
		ID:        "t1",
		Status:    domain.StatusOpen,
		CreatedBy: domain.UserRef{ID: "u-req"},
	}
	eng.Apply(ctx, []domain.TicketSnapshot{ticket}, diffNow)

	changed := ticket
	changed.Status = domain.StatusPending
	eng.Apply(ctx, []domain.TicketSnapshot{changed}, diffNow.Add(time.Second))

	assert.Len(t, eng.ActivityFor(Viewer{ID: "u-req", Role: domain.RoleUser}), 1)
	assert.Empty(t, eng.ActivityFor(Viewer{ID: "u-other", Role: domain.RoleUser}))
	assert.Empty(t, eng.ActivityFor(Viewer{ID: "u-fin", Role: domain.RoleFinancial}))
}

func TestEngineNotificationsForFiltersPerViewer(t *testing.T) {
	eng := newTestEngine(t)

	ticket := domain.TicketSnapshot{
		ID:        "t1",
		Status:    domain.StatusOpen,
		CreatedBy: domain.UserRef{ID: "u-req"},
	}
	eng.Apply(context.Background(), []domain.TicketSnapshot{ticket}, diffNow)

	ticketID := "t1"
	eng.Log().Append(domain.Notification{ID: "n1", Type: domain.NotificationStatusChanged, TicketID: &ticketID})
	subject := "u-tech"
	eng.Log().Append(domain.Notification{ID: "n2", Type: domain.NotificationLogin, UserID: &subject})

	admin := eng.NotificationsFor(Viewer{ID: "u-admin", Role: domain.RoleAdmin})
	assert.Len(t, admin, 2)

	requester := eng.NotificationsFor(Viewer{ID: "u-req", Role: domain.RoleUser})
	require.Len(t, requester, 1)
	assert.Equal(t, "n1", requester[0].ID)

	assert.Equal(t, 1, eng.UnreadCountFor(Viewer{ID: "u-req", Role: domain.RoleUser}))
	eng.Log().MarkAllRead()
	assert.Equal(t, 0, eng.UnreadCountFor(Viewer{ID: "u-req", Role: domain.RoleUser}))
}
