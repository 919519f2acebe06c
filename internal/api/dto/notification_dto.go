package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationResponse is one entry of the notification feed.
type NotificationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	UserID      *string   `json:"user_id,omitempty"`
	UserName    *string   `json:"user_name,omitempty"`
	TicketID    *string   `json:"ticket_id,omitempty"`
	TicketTitle *string   `json:"ticket_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Read        bool      `json:"read"`
}

// Notification converts a domain notification to its response shape.
func Notification(notification domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          notification.ID,
		Type:        string(notification.Type),
		Title:       notification.Title,
		Message:     notification.Message,
		UserID:      notification.UserID,
		UserName:    notification.UserName,
		TicketID:    notification.TicketID,
		TicketTitle: notification.TicketTitle,
		CreatedAt:   notification.CreatedAt,
		Read:        notification.Read,
	}
}
