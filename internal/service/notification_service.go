package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/engine"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// NotificationService turns classified activity events into entries in
// the bounded notification log, and records the login/logout entries
// that originate outside the ticket engine. Entries carry no viewer:
// visibility is decided per viewer when the log is read.
type NotificationService struct {
	log     *engine.NotificationLog
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(log *engine.NotificationLog, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{log: log, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to every activity event kind.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventQueueTransferred, n.handleQueueTransferred)
	dispatcher.Subscribe(events.EventInteractionAdded, n.handleInteractionAdded)
	dispatcher.Subscribe(events.EventTicketAccepted, n.handleTicketAccepted)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.ActivityEvent) error {
	n.append(domain.Notification{
		Type:     domain.NotificationTicketCreated,
		Title:    "New ticket",
		Message:  fmt.Sprintf("%q was opened by %s", event.Ticket.Title, event.Ticket.CreatedBy.Name),
		UserID:   &event.Ticket.CreatedBy.ID,
		UserName: &event.Ticket.CreatedBy.Name,
	}, event)
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	n.append(domain.Notification{
		Type:    domain.NotificationStatusChanged,
		Title:   "Status updated",
		Message: fmt.Sprintf("%q moved from %s to %s", event.Ticket.Title, payload.OldStatus, payload.NewStatus),
	}, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	notification := domain.Notification{
		Type:  domain.NotificationTicketAssigned,
		Title: "Ticket assigned",
	}
	if payload.NewAssignee != nil {
		notification.Message = fmt.Sprintf("%q was assigned to %s", event.Ticket.Title, payload.NewAssignee.Name)
		notification.UserID = &payload.NewAssignee.ID
		notification.UserName = &payload.NewAssignee.Name
	} else {
		notification.Message = fmt.Sprintf("%q is no longer assigned", event.Ticket.Title)
	}
	n.append(notification, event)
	return nil
}

func (n *NotificationService) handleQueueTransferred(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.QueueTransferredPayload)
	if !ok {
		return nil
	}
	n.append(domain.Notification{
		Type:    domain.NotificationQueueTransferred,
		Title:   "Queue transfer",
		Message: fmt.Sprintf("%q moved from queue %s to %s", event.Ticket.Title, payload.OldQueue, payload.NewQueue),
	}, event)
	return nil
}

func (n *NotificationService) handleInteractionAdded(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.InteractionAddedPayload)
	if !ok {
		return nil
	}
	author := "System"
	notification := domain.Notification{
		Type:  domain.NotificationInteractionAdded,
		Title: "New interaction",
	}
	if payload.Interaction.Author != nil {
		author = payload.Interaction.Author.Name
		notification.UserID = &payload.Interaction.Author.ID
		notification.UserName = &payload.Interaction.Author.Name
	}
	notification.Message = fmt.Sprintf("%s replied on %q", author, event.Ticket.Title)
	n.append(notification, event)
	return nil
}

func (n *NotificationService) handleTicketAccepted(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.TicketAcceptedPayload)
	if !ok {
		return nil
	}
	n.append(domain.Notification{
		Type:     domain.NotificationTicketAccepted,
		Title:    "Ticket accepted",
		Message:  fmt.Sprintf("%s accepted %q", payload.Assignee.Name, event.Ticket.Title),
		UserID:   &payload.Assignee.ID,
		UserName: &payload.Assignee.Name,
	}, event)
	return nil
}

// RecordLogin appends a session notification for a sign-in.
func (n *NotificationService) RecordLogin(user domain.UserRef, at time.Time) {
	n.appendSession(domain.NotificationLogin, "Signed in", fmt.Sprintf("%s signed in", user.Name), user, at)
}

// RecordLogout appends a session notification for a sign-out.
func (n *NotificationService) RecordLogout(user domain.UserRef, at time.Time) {
	n.appendSession(domain.NotificationLogout, "Signed out", fmt.Sprintf("%s signed out", user.Name), user, at)
}

func (n *NotificationService) append(notification domain.Notification, event events.ActivityEvent) {
	notification.ID = uuid.NewString()
	notification.TicketID = &event.Ticket.ID
	notification.TicketTitle = &event.Ticket.Title
	notification.CreatedAt = event.Timestamp
	n.log.Append(notification)
	n.metrics.RecordNotification()
	n.logger.Debug("notification appended",
		zap.String("type", string(notification.Type)),
		zap.String("ticket_id", event.Ticket.ID))
}

func (n *NotificationService) appendSession(kind domain.NotificationType, title, message string, user domain.UserRef, at time.Time) {
	n.log.Append(domain.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Message:   message,
		UserID:    &user.ID,
		UserName:  &user.Name,
		CreatedAt: at,
	})
	n.metrics.RecordNotification()
}
