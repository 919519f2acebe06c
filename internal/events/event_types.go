package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates classified activity kinds.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventStatusChanged    EventType = "status_changed"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventQueueTransferred EventType = "queue_transfer"
	EventInteractionAdded EventType = "interaction_added"
	EventTicketAccepted   EventType = "ticket_accepted"
)

// ActivityEvent is a classified delta detected between two snapshots
// of the same ticket. Ticket is the ticket's new snapshot. Events from
// the same poll cycle share one timestamp.
type ActivityEvent struct {
	ID        string
	Type      EventType
	Ticket    domain.TicketSnapshot
	Timestamp time.Time
	Payload   interface{}
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.Status
	NewStatus domain.Status
}

// TicketAssignedPayload payload. Either side may be nil when the
// ticket moved from or to unassigned.
type TicketAssignedPayload struct {
	OldAssignee *domain.UserRef
	NewAssignee *domain.UserRef
}

// QueueTransferredPayload payload. Labels are normalized.
type QueueTransferredPayload struct {
	OldQueue string
	NewQueue string
}

// InteractionAddedPayload payload.
type InteractionAddedPayload struct {
	Interaction domain.Interaction
}

// TicketAcceptedPayload payload.
type TicketAcceptedPayload struct {
	Assignee domain.UserRef
}
