package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fakeStart = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	clk := NewFake(fakeStart)

	var order []string
	clk.AfterFunc(3*time.Second, func() { order = append(order, "late") })
	clk.AfterFunc(time.Second, func() { order = append(order, "early") })

	clk.Advance(5 * time.Second)

	assert.Equal(t, []string{"early", "late"}, order)
	assert.Equal(t, fakeStart.Add(5*time.Second), clk.Now())
}

func TestFakeDoesNotFireBeforeDeadline(t *testing.T) {
	clk := NewFake(fakeStart)

	fired := false
	clk.AfterFunc(10*time.Second, func() { fired = true })

	clk.Advance(9 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 1, clk.PendingTimers())

	clk.Advance(time.Second)
	assert.True(t, fired)
	assert.Equal(t, 0, clk.PendingTimers())
}

func TestFakeCallbackObservesOwnFireTime(t *testing.T) {
	clk := NewFake(fakeStart)

	var observed time.Time
	clk.AfterFunc(2*time.Second, func() { observed = clk.Now() })

	clk.Advance(10 * time.Second)

	assert.Equal(t, fakeStart.Add(2*time.Second), observed)
}

func TestFakeCallbackMayReschedule(t *testing.T) {
	clk := NewFake(fakeStart)

	var fires int
	var tick func()
	tick = func() {
		fires++
		if fires < 3 {
			clk.AfterFunc(time.Second, tick)
		}
	}
	clk.AfterFunc(time.Second, tick)

	clk.Advance(10 * time.Second)

	assert.Equal(t, 3, fires, "rescheduled timers fire within the same advance")
}

func TestFakeStop(t *testing.T) {
	clk := NewFake(fakeStart)

	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	clk.Advance(time.Minute)
	assert.False(t, fired)
	assert.False(t, timer.Stop(), "a stopped timer reports false")
	assert.Equal(t, 0, clk.PendingTimers())
}

func TestFakeZeroDelayFiresSynchronously(t *testing.T) {
	clk := NewFake(fakeStart)

	fired := false
	clk.AfterFunc(0, func() { fired = true })

	assert.True(t, fired)
}
