package worker

import (
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// engine's event bus.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
