package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/engine"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EngineHandler exposes the polling controller: its state, the
// accumulated transition matrix, and the runtime toggles.
type EngineHandler struct {
	engine  *engine.Engine
	poller  *engine.Poller
	metrics *observability.Metrics
}

// NewEngineHandler constructs handler.
func NewEngineHandler(e *engine.Engine, poller *engine.Poller, metrics *observability.Metrics) *EngineHandler {
	return &EngineHandler{engine: e, poller: poller, metrics: metrics}
}

// Status GET /engine/status.
func (h *EngineHandler) Status(c *fiber.Ctx) error {
	status := h.poller.Status()
	payload := fiber.Map{
		"state":       string(status.State),
		"live":        status.Live,
		"interval_ms": status.Interval.Milliseconds(),
		"cooldown_ms": status.Cooldown.Milliseconds(),
		"tickets":     h.engine.Store().Len(),
		"counters":    h.metrics.EngineCounters(),
	}
	if lastPoll := h.engine.Store().LastPoll(); !lastPoll.IsZero() {
		payload["last_poll"] = lastPoll
	}
	if !status.CooldownUntil.IsZero() {
		payload["cooldown_until"] = status.CooldownUntil
	}
	if !status.LastFailure.IsZero() {
		payload["last_failure"] = status.LastFailure
	}
	return c.JSON(fiber.Map{"data": payload})
}

// Transitions GET /engine/transitions. The matrix of observed status
// moves, old status to new status to count.
func (h *EngineHandler) Transitions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.engine.TransitionMatrix()})
}

// SetInterval PATCH /engine/interval.
func (h *EngineHandler) SetInterval(c *fiber.Ctx) error {
	var req struct {
		IntervalMS int `json:"interval_ms"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IntervalMS <= 0 {
		return apperrors.NewValidationError("interval_ms must be positive", nil)
	}
	h.poller.SetInterval(time.Duration(req.IntervalMS) * time.Millisecond)
	return c.SendStatus(http.StatusNoContent)
}

// SetLive PATCH /engine/live. Pausing stops the timer loop; anything
// already in flight is discarded rather than applied.
func (h *EngineHandler) SetLive(c *fiber.Ctx) error {
	var req struct {
		Live *bool `json:"live"`
	}
	if err := c.BodyParser(&req); err != nil || req.Live == nil {
		return apperrors.NewValidationError("live flag required", nil)
	}
	h.poller.SetLive(*req.Live)
	return c.SendStatus(http.StatusNoContent)
}
