package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/clock"
	"github.com/spec-kit/helpdesk-service/internal/fetch"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// State enumerates the poller's explicit states.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateCooldown State = "cooldown"
)

// Default timings. The interval is user-adjustable at runtime; the
// cooldown window is fixed per process.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultCooldown     = 2 * time.Minute
)

// Poller owns the timer loop that drives the engine. The state machine
// guarantees at most one fetch in flight: a tick that finds the poller
// already fetching returns without doing anything. A rate-limited
// fetch suspends polling for the cooldown window; any other failure
// retains stale data and retries on the next scheduled tick. Stopping
// cancels the pending timer, and a fetch result that arrives after
// Stop is discarded rather than applied.
type Poller struct {
	engine  *Engine
	source  fetch.Source
	clk     clock.Clock
	logger  *zap.Logger
	metrics *observability.Metrics

	mu            sync.Mutex
	state         State
	live          bool
	stopped       bool
	started       bool
	interval      time.Duration
	cooldown      time.Duration
	timer         *clock.Timer
	generation    int
	cooldownUntil time.Time
	lastFailure   time.Time
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewPoller constructs a poller. Zero durations fall back to the
// defaults.
func NewPoller(engine *Engine, source fetch.Source, clk clock.Clock, logger *zap.Logger, metrics *observability.Metrics, interval, cooldown time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Poller{
		engine:   engine,
		source:   source,
		clk:      clk,
		logger:   logger,
		metrics:  metrics,
		state:    StateIdle,
		interval: interval,
		cooldown: cooldown,
	}
}

// Start arms the timer loop. The first fetch fires one interval after
// Start. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.live = true
	p.state = StateIdle
	p.ctx, p.cancel = context.WithCancel(ctx)
	delay := p.interval
	p.mu.Unlock()

	p.schedule(delay, p.tick)
}

// Stop tears the poller down: the pending timer is cleared so no
// orphaned fetch is scheduled, and the fetch context is cancelled.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.generation++
	timer := p.timer
	p.timer = nil
	cancel := p.cancel
	p.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

// SetLive toggles polling. While paused the timer never fires;
// unpausing resumes from Idle with a fresh interval.
func (p *Poller) SetLive(live bool) {
	p.mu.Lock()
	if p.stopped || p.live == live {
		p.mu.Unlock()
		return
	}
	p.live = live
	var timer *clock.Timer
	var delay time.Duration
	if !live {
		// discard anything in flight; a paused poller applies nothing
		p.generation++
		p.state = StateIdle
		timer = p.timer
		p.timer = nil
	} else {
		p.state = StateIdle
		delay = p.interval
	}
	started := p.started
	p.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if live && started {
		p.schedule(delay, p.tick)
	}
}

// SetInterval adjusts the polling interval. When the poller is idle
// the pending tick is rescheduled with the new interval.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	p.interval = interval
	reschedule := p.started && p.live && !p.stopped && p.state == StateIdle
	var timer *clock.Timer
	if reschedule {
		timer = p.timer
		p.timer = nil
	}
	p.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if reschedule {
		p.schedule(interval, p.tick)
	}
}

// Status reports the poller's state for the status endpoint.
type Status struct {
	State         State
	Live          bool
	Interval      time.Duration
	Cooldown      time.Duration
	CooldownUntil time.Time
	LastFailure   time.Time
}

// Status returns a snapshot of the controller state.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		State:         p.state,
		Live:          p.live,
		Interval:      p.interval,
		Cooldown:      p.cooldown,
		CooldownUntil: p.cooldownUntil,
		LastFailure:   p.lastFailure,
	}
}

// tick runs one poll cycle: fetch, classify, swap. Exactly one tick
// makes progress at a time; the Fetching state rejects overlap.
func (p *Poller) tick() {
	p.mu.Lock()
	if p.stopped || !p.live || p.state == StateFetching {
		p.mu.Unlock()
		return
	}
	p.state = StateFetching
	generation := p.generation
	ctx := p.ctx
	p.mu.Unlock()

	tickets, err := p.source.FetchAll(ctx)

	p.mu.Lock()
	if p.stopped || generation != p.generation {
		// stopped or paused while the fetch was in flight; discard
		p.mu.Unlock()
		return
	}

	switch {
	case err == nil:
		p.state = StateIdle
	case errors.Is(err, fetch.ErrRateLimited):
		p.state = StateCooldown
		p.lastFailure = p.clk.Now()
		p.cooldownUntil = p.lastFailure.Add(p.cooldown)
	default:
		p.state = StateIdle
		p.lastFailure = p.clk.Now()
	}
	interval := p.interval
	cooldown := p.cooldown
	p.mu.Unlock()

	switch {
	case err == nil:
		p.metrics.RecordPoll("success")
		report := p.engine.Apply(ctx, tickets, p.clk.Now())
		if len(report.Events) > 0 {
			p.logger.Info("poll cycle classified activity",
				zap.Int("events", len(report.Events)),
				zap.Int("tickets", len(tickets)))
		}
		p.schedule(interval, p.tick)
	case errors.Is(err, fetch.ErrRateLimited):
		p.metrics.RecordPoll("rate_limited")
		p.logger.Warn("fetch rate limited; entering cooldown",
			zap.Duration("cooldown", cooldown))
		p.schedule(cooldown, p.endCooldown)
	default:
		p.metrics.RecordPoll("transport_error")
		p.logger.Error("fetch failed; retaining stale snapshot", zap.Error(err))
		p.schedule(interval, p.tick)
	}
}

// endCooldown returns the poller to Idle once the cooldown window has
// elapsed and resumes normal polling.
func (p *Poller) endCooldown() {
	p.mu.Lock()
	if p.stopped || !p.live || p.state != StateCooldown {
		p.mu.Unlock()
		return
	}
	p.state = StateIdle
	p.cooldownUntil = time.Time{}
	delay := p.interval
	p.mu.Unlock()

	p.logger.Info("cooldown elapsed; resuming polling")
	p.schedule(delay, p.tick)
}

// schedule arms the next timer unless the poller is stopped or paused.
// Never called with the poller lock held: a fake clock fires callbacks
// synchronously.
func (p *Poller) schedule(delay time.Duration, callback func()) {
	p.mu.Lock()
	if p.stopped || !p.live {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	timer := p.clk.AfterFunc(delay, callback)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		timer.Stop()
		return
	}
	p.timer = timer
	p.mu.Unlock()
}
