package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/engine"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NotificationsHandler serves the per-viewer notification feed and the
// retained activity history. Filtering runs at query time against the
// current snapshot collection.
type NotificationsHandler struct {
	engine *engine.Engine
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(e *engine.Engine) *NotificationsHandler {
	return &NotificationsHandler{engine: e}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	viewer, err := viewerFromContext(c)
	if err != nil {
		return err
	}
	notifications := h.engine.NotificationsFor(viewer)
	data := make([]dto.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		data = append(data, dto.Notification(notification))
	}
	return c.JSON(fiber.Map{
		"data":   data,
		"unread": h.engine.UnreadCountFor(viewer),
	})
}

// MarkRead PATCH /notifications/:id/read. Unknown IDs succeed; the
// operation is a total no-op when nothing matches.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if _, err := viewerFromContext(c); err != nil {
		return err
	}
	h.engine.Log().MarkRead(c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	if _, err := viewerFromContext(c); err != nil {
		return err
	}
	h.engine.Log().MarkAllRead()
	return c.SendStatus(http.StatusNoContent)
}

// Clear DELETE /notifications.
func (h *NotificationsHandler) Clear(c *fiber.Ctx) error {
	if _, err := viewerFromContext(c); err != nil {
		return err
	}
	h.engine.Log().Clear()
	return c.SendStatus(http.StatusNoContent)
}

// Activity GET /activity. The retained classified events visible to
// the viewer, newest-first.
func (h *NotificationsHandler) Activity(c *fiber.Ctx) error {
	viewer, err := viewerFromContext(c)
	if err != nil {
		return err
	}
	history := h.engine.ActivityFor(viewer)
	data := make([]fiber.Map, 0, len(history))
	for _, event := range history {
		data = append(data, fiber.Map{
			"id":           event.ID,
			"type":         string(event.Type),
			"ticket_id":    event.Ticket.ID,
			"ticket_title": event.Ticket.Title,
			"timestamp":    event.Timestamp,
			"payload":      event.Payload,
		})
	}
	return c.JSON(fiber.Map{"data": data})
}

func viewerFromContext(c *fiber.Ctx) (engine.Viewer, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return engine.Viewer{}, apperrors.NewUnauthorized("authentication required")
	}
	return engine.Viewer{ID: principal.User.ID, Role: principal.Role}, nil
}
