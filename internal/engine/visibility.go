package engine

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Viewer identifies who is looking at the notification feed.
type Viewer struct {
	ID   string
	Role domain.Role
}

// sighting is the role-independent description of one candidate entry:
// its kind, the user it concerns (new assignee for assignments and
// acceptances, subject for login/logout) and the ticket's current
// snapshot, nil when the entry is not ticket-scoped or the ticket is
// no longer observed.
type sighting struct {
	kind    domain.NotificationType
	subject string
	ticket  *domain.TicketSnapshot
}

// IsNotificationVisible decides whether one notification is shown to
// the viewer. Evaluated independently for every (viewer, notification)
// pair at query time.
func IsNotificationVisible(viewer Viewer, notification domain.Notification, ticket *domain.TicketSnapshot) bool {
	subject := ""
	if notification.UserID != nil {
		subject = *notification.UserID
	}
	return visibleTo(viewer, sighting{kind: notification.Type, subject: subject, ticket: ticket})
}

// IsEventVisible decides whether one activity event is shown to the
// viewer. The ticket argument is the current snapshot when the ticket
// is still observed; callers fall back to the event's own snapshot.
func IsEventVisible(viewer Viewer, event events.ActivityEvent, ticket *domain.TicketSnapshot) bool {
	if ticket == nil {
		snapshot := event.Ticket
		ticket = &snapshot
	}
	return visibleTo(viewer, sighting{
		kind:    notificationKind(event.Type),
		subject: eventSubject(event),
		ticket:  ticket,
	})
}

// visibleTo dispatches on the closed role set. Unknown roles see
// nothing.
func visibleTo(viewer Viewer, entry sighting) bool {
	switch viewer.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleFinancial:
		// ticket events are not financial events
		return false
	case domain.RoleUser:
		return visibleToUser(viewer, entry)
	case domain.RoleTechnician, domain.RoleTechnicianN2:
		// N2 follows the same rule as first-level technicians
		return visibleToTechnician(viewer, entry)
	}
	return false
}

// visibleToUser shows requesters their own tickets only: entries for a
// ticket they created or are the client of, and session entries where
// they are the subject.
func visibleToUser(viewer Viewer, entry sighting) bool {
	if isSessionKind(entry.kind) {
		return entry.subject == viewer.ID
	}
	if entry.ticket == nil {
		return false
	}
	if entry.ticket.CreatedBy.ID == viewer.ID {
		return true
	}
	return entry.ticket.Client != nil && entry.ticket.Client.ID == viewer.ID
}

// visibleToTechnician shows technicians the tickets they hold, the
// unassigned pool and their own submissions. Assignment entries are
// the exception: a technician is only told about an assignment when
// they are the new assignee.
func visibleToTechnician(viewer Viewer, entry sighting) bool {
	if isSessionKind(entry.kind) {
		return entry.subject == viewer.ID
	}
	if entry.ticket == nil {
		return false
	}

	holds := entry.ticket.AssignedTo != nil && entry.ticket.AssignedTo.ID == viewer.ID
	unassigned := entry.ticket.AssignedTo == nil
	author := entry.ticket.CreatedBy.ID == viewer.ID
	if !holds && !unassigned && !author {
		return false
	}

	if entry.kind == domain.NotificationTicketAssigned {
		return entry.subject == viewer.ID
	}
	return true
}

func isSessionKind(kind domain.NotificationType) bool {
	return kind == domain.NotificationLogin || kind == domain.NotificationLogout
}

// notificationKind maps an event type to the notification kind the
// visibility rules are written against.
func notificationKind(eventType events.EventType) domain.NotificationType {
	switch eventType {
	case events.EventTicketCreated:
		return domain.NotificationTicketCreated
	case events.EventStatusChanged:
		return domain.NotificationStatusChanged
	case events.EventTicketAssigned:
		return domain.NotificationTicketAssigned
	case events.EventQueueTransferred:
		return domain.NotificationQueueTransferred
	case events.EventInteractionAdded:
		return domain.NotificationInteractionAdded
	case events.EventTicketAccepted:
		return domain.NotificationTicketAccepted
	}
	return domain.NotificationType(eventType)
}

// eventSubject extracts the user an event concerns, when it has one.
func eventSubject(event events.ActivityEvent) string {
	switch payload := event.Payload.(type) {
	case events.TicketAssignedPayload:
		if payload.NewAssignee != nil {
			return payload.NewAssignee.ID
		}
	case events.TicketAcceptedPayload:
		return payload.Assignee.ID
	}
	return ""
}
