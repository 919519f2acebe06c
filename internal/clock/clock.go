// Package clock abstracts time for the polling controller so tests can
// drive timers deterministically. Production code injects Real(),
// tests inject a Fake with explicit Advance control.
package clock

import "time"

// Clock provides the time operations the poller depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f in its own
	// goroutine. The returned Timer cancels the pending call with
	// Stop.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer represents a scheduled call registered via AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. Returns true if the call stops
// the timer, false if it already fired or was stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }
