package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// Alerter receives a generic attention cue once per classified event,
// independent of whether any viewer ultimately sees a notification for
// it. Deployments plug in sound or OS-level cues here.
type Alerter interface {
	NotifyAttentionRequired(event events.ActivityEvent)
}

// logAlerter is the default Alerter: it logs the cue and counts it.
type logAlerter struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewLogAlerter creates the default Alerter.
func NewLogAlerter(logger *zap.Logger, metrics *observability.Metrics) Alerter {
	return &logAlerter{logger: logger, metrics: metrics}
}

func (a *logAlerter) NotifyAttentionRequired(event events.ActivityEvent) {
	a.logger.Debug("attention required",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.Ticket.ID))
	a.metrics.RecordAlert()
}

// alertHandler adapts an Alerter to the dispatcher.
func alertHandler(alerter Alerter) events.EventHandler {
	return func(_ context.Context, event events.ActivityEvent) error {
		alerter.NotifyAttentionRequired(event)
		return nil
	}
}
