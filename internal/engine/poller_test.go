package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/clock"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/fetch"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// scriptedSource replays queued fetch results; once the script runs
// out it keeps returning the last result.
type scriptedSource struct {
	mu      sync.Mutex
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	tickets []domain.TicketSnapshot
	err     error
}

func (s *scriptedSource) FetchAll(context.Context) ([]domain.TicketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return nil, nil
	}
	result := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return result.tickets, result.err
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestPoller(t *testing.T, source fetch.Source, clk clock.Clock) (*Poller, *Engine) {
	t.Helper()
	eng := newTestEngine(t)
	poller := NewPoller(eng, source, clk, zap.NewNop(), observability.NewMetrics(),
		5*time.Second, 2*time.Minute)
	return poller, eng
}

func TestPollerFirstFetchAfterOneInterval(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{results: []scriptedResult{
		{tickets: []domain.TicketSnapshot{{ID: "t1", Status: domain.StatusOpen}}},
	}}
	poller, eng := newTestPoller(t, source, clk)
	defer poller.Stop()

	poller.Start(context.Background())
	assert.Equal(t, 0, source.callCount(), "Start itself does not fetch")

	clk.Advance(4 * time.Second)
	assert.Equal(t, 0, source.callCount())

	clk.Advance(time.Second)
	assert.Equal(t, 1, source.callCount())
	assert.Equal(t, 1, eng.Store().Len())
	assert.Equal(t, clk.Now(), eng.Store().LastPoll())

	clk.Advance(5 * time.Second)
	assert.Equal(t, 2, source.callCount(), "polling continues on cadence")
}

func TestPollerCooldownOnRateLimit(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{results: []scriptedResult{
		{err: fetch.ErrRateLimited},
		{tickets: []domain.TicketSnapshot{{ID: "t1", Status: domain.StatusOpen}}},
	}}
	poller, eng := newTestPoller(t, source, clk)
	defer poller.Stop()

	poller.Start(context.Background())
	clk.Advance(5 * time.Second)
	require.Equal(t, 1, source.callCount())

	status := poller.Status()
	assert.Equal(t, StateCooldown, status.State)
	assert.Equal(t, clk.Now().Add(2*time.Minute), status.CooldownUntil)
	assert.Equal(t, 0, eng.Store().Len(), "a limited cycle applies nothing")
	assert.True(t, eng.Store().LastPoll().IsZero())

	// nothing fires inside the cooldown window
	clk.Advance(2*time.Minute - time.Second)
	assert.Equal(t, 1, source.callCount())
	assert.Equal(t, StateCooldown, poller.Status().State)

	// the window elapses; polling resumes one interval later
	clk.Advance(time.Second)
	assert.Equal(t, StateIdle, poller.Status().State)
	assert.Equal(t, 1, source.callCount())

	clk.Advance(5 * time.Second)
	assert.Equal(t, 2, source.callCount())
	assert.Equal(t, 1, eng.Store().Len())
}

func TestPollerTransportErrorRetainsStaleData(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{results: []scriptedResult{
		{tickets: []domain.TicketSnapshot{{ID: "t1", Status: domain.StatusOpen}}},
		{err: &fetch.TransportError{Op: "fetch tickets", Err: errors.New("connection refused")}},
		{tickets: []domain.TicketSnapshot{{ID: "t1", Status: domain.StatusOpen}}},
	}}
	poller, eng := newTestPoller(t, source, clk)
	defer poller.Stop()

	poller.Start(context.Background())
	clk.Advance(5 * time.Second)
	require.Equal(t, 1, eng.Store().Len())
	lastPoll := eng.Store().LastPoll()

	clk.Advance(5 * time.Second)
	require.Equal(t, 2, source.callCount())
	assert.Equal(t, StateIdle, poller.Status().State, "transport errors do not trigger cooldown")
	assert.Equal(t, 1, eng.Store().Len(), "stale data survives a failed cycle")
	assert.Equal(t, lastPoll, eng.Store().LastPoll())
	assert.Equal(t, clk.Now(), poller.Status().LastFailure)

	clk.Advance(5 * time.Second)
	assert.Equal(t, 3, source.callCount(), "normal cadence resumes immediately")
}

func TestPollerPauseAndResume(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{}
	poller, _ := newTestPoller(t, source, clk)
	defer poller.Stop()

	poller.Start(context.Background())
	clk.Advance(5 * time.Second)
	require.Equal(t, 1, source.callCount())

	poller.SetLive(false)
	assert.False(t, poller.Status().Live)
	assert.Equal(t, 0, clk.PendingTimers(), "pausing clears the pending timer")

	clk.Advance(time.Hour)
	assert.Equal(t, 1, source.callCount(), "a paused poller never fetches")

	poller.SetLive(true)
	clk.Advance(5 * time.Second)
	assert.Equal(t, 2, source.callCount(), "resume restarts the cadence")
}

func TestPollerStop(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{}
	poller, _ := newTestPoller(t, source, clk)

	poller.Start(context.Background())
	poller.Stop()

	assert.Equal(t, 0, clk.PendingTimers())
	clk.Advance(time.Hour)
	assert.Equal(t, 0, source.callCount())

	// a stopped poller stays stopped
	poller.Start(context.Background())
	clk.Advance(time.Hour)
	assert.Equal(t, 0, source.callCount())
}

func TestPollerSetInterval(t *testing.T) {
	clk := clock.NewFake(diffNow)
	source := &scriptedSource{}
	poller, _ := newTestPoller(t, source, clk)
	defer poller.Stop()

	poller.Start(context.Background())
	poller.SetInterval(time.Second)
	assert.Equal(t, time.Second, poller.Status().Interval)

	clk.Advance(time.Second)
	assert.Equal(t, 1, source.callCount(), "the pending tick is rescheduled")

	clk.Advance(time.Second)
	assert.Equal(t, 2, source.callCount())

	// non-positive intervals are ignored
	poller.SetInterval(0)
	assert.Equal(t, time.Second, poller.Status().Interval)
}

func TestPollerStatusDefaults(t *testing.T) {
	clk := clock.NewFake(diffNow)
	poller, _ := newTestPoller(t, &scriptedSource{}, clk)
	defer poller.Stop()

	status := poller.Status()
	assert.Equal(t, StateIdle, status.State)
	assert.False(t, status.Live, "not live until started")
	assert.Equal(t, 5*time.Second, status.Interval)
	assert.Equal(t, 2*time.Minute, status.Cooldown)
	assert.True(t, status.CooldownUntil.IsZero())
	assert.True(t, status.LastFailure.IsZero())
}
