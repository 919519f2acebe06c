// Package engine implements ticket change detection: snapshot
// differencing, event classification, transition accounting,
// per-viewer visibility and the polling controller that drives it.
package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Diff compares two observations of the ticket collection and returns
// the classified activity events, in collection order. It is a pure
// function of its inputs.
//
// An empty previous collection establishes the baseline and yields no
// events; the first observation is never reported as a burst of
// creations. Tickets present only in previous yield nothing either —
// deletions are not classified as activity.
//
// The per-ticket checks are additive, never an else-if chain: one
// ticket can produce a status change, an assignment, a queue transfer,
// interactions and an acceptance in the same cycle. Every event
// references the ticket's new snapshot and the shared cycle timestamp.
func Diff(previous, current []domain.TicketSnapshot, now time.Time) []events.ActivityEvent {
	if len(previous) == 0 {
		return nil
	}

	known := make(map[string]domain.TicketSnapshot, len(previous))
	for _, ticket := range previous {
		known[ticket.ID] = ticket
	}

	var detected []events.ActivityEvent
	emit := func(eventType events.EventType, ticket domain.TicketSnapshot, payload interface{}) {
		detected = append(detected, events.ActivityEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Ticket:    ticket,
			Timestamp: now,
			Payload:   payload,
		})
	}

	for _, ticket := range current {
		old, seen := known[ticket.ID]
		if !seen {
			emit(events.EventTicketCreated, ticket, nil)
			continue
		}

		if old.Status != ticket.Status {
			emit(events.EventStatusChanged, ticket, events.StatusChangedPayload{
				OldStatus: old.Status,
				NewStatus: ticket.Status,
			})
		}

		if refID(old.AssignedTo) != refID(ticket.AssignedTo) {
			emit(events.EventTicketAssigned, ticket, events.TicketAssignedPayload{
				OldAssignee: old.AssignedTo,
				NewAssignee: ticket.AssignedTo,
			})
		}

		oldQueue := domain.NormalizeQueue(old.Queue)
		newQueue := domain.NormalizeQueue(ticket.Queue)
		if oldQueue != newQueue {
			emit(events.EventQueueTransferred, ticket, events.QueueTransferredPayload{
				OldQueue: oldQueue,
				NewQueue: newQueue,
			})
		}

		if len(ticket.Interactions) > len(old.Interactions) {
			for _, interaction := range newInteractions(old, ticket) {
				emit(events.EventInteractionAdded, ticket, events.InteractionAddedPayload{
					Interaction: interaction,
				})
			}
		}

		if accepted(old, ticket) {
			emit(events.EventTicketAccepted, ticket, events.TicketAcceptedPayload{
				Assignee: *ticket.AssignedTo,
			})
		}
	}

	return detected
}

// newInteractions returns the interactions present on the new snapshot
// but not on the old one, skipping the types already represented by
// the dedicated status/assignment/queue checks so they are not
// double-counted as generic activity.
func newInteractions(old, current domain.TicketSnapshot) []domain.Interaction {
	existing := make(map[string]struct{}, len(old.Interactions))
	for _, interaction := range old.Interactions {
		existing[interaction.ID] = struct{}{}
	}

	var added []domain.Interaction
	for _, interaction := range current.Interactions {
		if _, ok := existing[interaction.ID]; ok {
			continue
		}
		switch interaction.Type {
		case domain.InteractionStatusChange, domain.InteractionAssignment, domain.InteractionQueueTransfer:
			continue
		}
		added = append(added, interaction)
	}
	return added
}

// accepted reports whether the ticket moved into service with a new
// assignee this cycle. This compound rule fires in addition to the
// status and assignment events, not instead of them.
func accepted(old, current domain.TicketSnapshot) bool {
	if current.Status != domain.StatusInService {
		return false
	}
	if old.Status != domain.StatusOpen && old.Status != domain.StatusPending {
		return false
	}
	if current.AssignedTo == nil {
		return false
	}
	return refID(old.AssignedTo) != current.AssignedTo.ID
}

func refID(ref *domain.UserRef) string {
	if ref == nil {
		return ""
	}
	return ref.ID
}
