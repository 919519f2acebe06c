package clock

import (
	"sync"
	"time"
)

// NewFake returns a Fake clock initialized to the given time. Time
// stands still until Advance is called.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

// Fake is a deterministic Clock for tests. AfterFunc callbacks fire
// synchronously during Advance, in deadline order. Callbacks may
// register new timers (the poller reschedules itself from inside its
// tick), and those fire too if they fall within the advanced window.
//
// Do not call Advance from within a callback; that would deadlock.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	callback func()
	stopped  bool
	fired    bool
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to run once the clock advances past d.
// If d <= 0, f runs synchronously.
func (c *Fake) AfterFunc(d time.Duration, f func()) *Timer {
	c.mu.Lock()
	if d <= 0 {
		c.mu.Unlock()
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}
	waiter := &fakeWaiter{deadline: c.current.Add(d), callback: f}
	c.waiters = append(c.waiters, waiter)
	c.mu.Unlock()

	return &Timer{stopFunc: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if waiter.fired || waiter.stopped {
			return false
		}
		waiter.stopped = true
		return true
	}}
}

// Advance moves the clock forward by d, firing due callbacks in
// deadline order. The clock steps through each deadline so a callback
// that reads Now observes its own fire time.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)

	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		if c.current.Before(next.deadline) {
			c.current = next.deadline
		}
		callback := next.callback
		c.mu.Unlock()
		callback()
		c.mu.Lock()
	}

	c.current = target
	c.mu.Unlock()
}

// PendingTimers reports how many registered timers have neither fired
// nor been stopped.
func (c *Fake) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := 0
	for _, waiter := range c.waiters {
		if !waiter.fired && !waiter.stopped {
			pending++
		}
	}
	return pending
}

// nextDueLocked returns the earliest live waiter due at or before
// target, or nil. Fired and stopped waiters are compacted away.
func (c *Fake) nextDueLocked(target time.Time) *fakeWaiter {
	live := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !waiter.fired && !waiter.stopped {
			live = append(live, waiter)
		}
	}
	c.waiters = live

	var next *fakeWaiter
	for _, waiter := range c.waiters {
		if waiter.deadline.After(target) {
			continue
		}
		if next == nil || waiter.deadline.Before(next.deadline) {
			next = waiter
		}
	}
	return next
}
