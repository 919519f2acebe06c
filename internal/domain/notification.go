package domain

import "time"

// NotificationType mirrors the classified activity kinds plus the
// login/logout kinds that originate outside the ticket engine.
type NotificationType string

const (
	NotificationTicketCreated    NotificationType = "ticket_created"
	NotificationStatusChanged    NotificationType = "status_changed"
	NotificationTicketAssigned   NotificationType = "ticket_assigned"
	NotificationQueueTransferred NotificationType = "queue_transfer"
	NotificationInteractionAdded NotificationType = "interaction_added"
	NotificationTicketAccepted   NotificationType = "ticket_accepted"
	NotificationLogin            NotificationType = "login"
	NotificationLogout           NotificationType = "logout"
)

// Notification is a user-facing entry in the bounded notification log.
// UserID names the user who triggered or is targeted by the entry (the
// new assignee for ticket_assigned/ticket_accepted, the subject for
// login/logout). Only Read is ever mutated after creation.
type Notification struct {
	ID          string
	Type        NotificationType
	Title       string
	Message     string
	UserID      *string
	UserName    *string
	TicketID    *string
	TicketTitle *string
	CreatedAt   time.Time
	Read        bool
}
