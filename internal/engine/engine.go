package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// DefaultHistoryLimit caps the retained activity events. Events are
// ephemeral beyond this display window.
const DefaultHistoryLimit = 200

// Dependencies bundles collaborators for the engine.
type Dependencies struct {
	Dispatcher events.Dispatcher
	Alerter    Alerter
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Engine owns snapshot differencing and its fan-out: each applied
// fetch result is diffed against the previous collection, the
// classified events are published on the dispatcher, and the store is
// swapped to the new collection. The transition accumulator and the
// alerter are wired as dispatcher subscribers at construction.
type Engine struct {
	store       *SnapshotStore
	transitions *TransitionAccumulator
	log         *NotificationLog
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger

	historyMu    sync.Mutex
	history      []events.ActivityEvent
	historyLimit int
}

// New constructs the engine and registers its internal subscribers.
func New(deps Dependencies, historyLimit int) *Engine {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = events.NewInMemoryDispatcher()
	}
	if deps.Alerter == nil {
		deps.Alerter = NewLogAlerter(deps.Logger, deps.Metrics)
	}

	e := &Engine{
		store:        NewSnapshotStore(),
		transitions:  NewTransitionAccumulator(),
		log:          NewNotificationLog(),
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		historyLimit: historyLimit,
	}

	e.dispatcher.Subscribe(events.EventStatusChanged, e.transitions.HandleEvent)
	e.dispatcher.SubscribeAll(alertHandler(deps.Alerter))
	return e
}

// CycleReport summarizes one applied poll cycle.
type CycleReport struct {
	Events       []events.ActivityEvent
	MalformedIDs []string
	ObservedAt   time.Time
}

// Apply runs one full cycle over a fetched collection: validate, diff
// against the previous snapshot, publish every event, then swap the
// store. The swap is unconditional so the next comparison runs against
// this observation even when nothing changed.
func (e *Engine) Apply(ctx context.Context, fetched []domain.TicketSnapshot, observedAt time.Time) CycleReport {
	valid, malformed := splitMalformed(fetched)
	if len(malformed) > 0 {
		e.metrics.RecordMalformed(len(malformed))
		e.logger.Warn("excluding malformed tickets from diff cycle",
			zap.Strings("ticket_ids", malformed))
	}

	previous := e.store.List()
	detected := Diff(previous, valid, observedAt)

	for _, event := range detected {
		e.metrics.RecordEvent(string(event.Type))
		e.appendHistory(event)
		_ = e.dispatcher.Publish(ctx, event)
	}

	e.store.Replace(valid, observedAt)

	return CycleReport{Events: detected, MalformedIDs: malformed, ObservedAt: observedAt}
}

// splitMalformed excludes tickets missing required fields from the
// cycle. The whole collection is never dropped for one bad ticket.
func splitMalformed(fetched []domain.TicketSnapshot) (valid []domain.TicketSnapshot, malformedIDs []string) {
	valid = make([]domain.TicketSnapshot, 0, len(fetched))
	for _, ticket := range fetched {
		if ticket.ID == "" || ticket.Status == "" {
			malformedIDs = append(malformedIDs, ticket.ID)
			continue
		}
		valid = append(valid, ticket)
	}
	return valid, malformedIDs
}

func (e *Engine) appendHistory(event events.ActivityEvent) {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	e.history = append([]events.ActivityEvent{event}, e.history...)
	if len(e.history) > e.historyLimit {
		e.history = e.history[:e.historyLimit]
	}
}

// ActivityFor returns the retained event history visible to the
// viewer, newest-first. Visibility runs against the ticket's current
// snapshot when the ticket is still observed.
func (e *Engine) ActivityFor(viewer Viewer) []events.ActivityEvent {
	e.historyMu.Lock()
	history := make([]events.ActivityEvent, len(e.history))
	copy(history, e.history)
	e.historyMu.Unlock()

	visible := make([]events.ActivityEvent, 0, len(history))
	for _, event := range history {
		if IsEventVisible(viewer, event, e.currentTicket(event.Ticket.ID)) {
			visible = append(visible, event)
		}
	}
	return visible
}

// NotificationsFor returns the bounded log filtered for the viewer,
// newest-first.
func (e *Engine) NotificationsFor(viewer Viewer) []domain.Notification {
	all := e.log.List()
	visible := make([]domain.Notification, 0, len(all))
	for _, notification := range all {
		var ticket *domain.TicketSnapshot
		if notification.TicketID != nil {
			ticket = e.currentTicket(*notification.TicketID)
		}
		if IsNotificationVisible(viewer, notification, ticket) {
			visible = append(visible, notification)
		}
	}
	return visible
}

// UnreadCountFor reports unread notifications visible to the viewer.
func (e *Engine) UnreadCountFor(viewer Viewer) int {
	count := 0
	for _, notification := range e.NotificationsFor(viewer) {
		if !notification.Read {
			count++
		}
	}
	return count
}

func (e *Engine) currentTicket(id string) *domain.TicketSnapshot {
	ticket, ok := e.store.Get(id)
	if !ok {
		return nil
	}
	return &ticket
}

// TransitionMatrix returns a copy of the accumulated status moves.
func (e *Engine) TransitionMatrix() TransitionMatrix {
	return e.transitions.Snapshot()
}

// Store exposes the snapshot store for readers.
func (e *Engine) Store() *SnapshotStore { return e.store }

// Log exposes the notification log.
func (e *Engine) Log() *NotificationLog { return e.log }

// Dispatcher exposes the event bus for additional subscribers.
func (e *Engine) Dispatcher() events.Dispatcher { return e.dispatcher }
