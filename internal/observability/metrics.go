package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the HTTP surface and
// the polling engine.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	pollCount       map[string]int64
	eventCount      map[string]int64
	alertCount      int64
	malformedCount  int64
	notifyAppended  int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		pollCount:    make(map[string]int64),
		eventCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordPoll counts one poll cycle by outcome ("success",
// "rate_limited", "transport_error").
func (m *Metrics) RecordPoll(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollCount[outcome]++
}

// RecordEvent counts one classified activity event by type.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// RecordAlert counts one attention cue.
func (m *Metrics) RecordAlert() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertCount++
}

// RecordMalformed counts tickets excluded from a diff cycle.
func (m *Metrics) RecordMalformed(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformedCount += int64(count)
}

// RecordNotification counts one appended notification.
func (m *Metrics) RecordNotification() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyAppended++
}

// EngineCounters returns a copy of the engine-side counters for the
// status endpoint.
func (m *Metrics) EngineCounters() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counters := map[string]int64{
		"alerts":        m.alertCount,
		"malformed":     m.malformedCount,
		"notifications": m.notifyAppended,
	}
	for outcome, count := range m.pollCount {
		counters["poll_"+outcome] = count
	}
	for eventType, count := range m.eventCount {
		counters["event_"+eventType] = count
	}
	return counters
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
