package engine

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// TransitionMatrix counts observed status moves, keyed by from-status
// then to-status.
type TransitionMatrix map[domain.Status]map[domain.Status]int

// TransitionAccumulator folds status changes into a persistent count
// matrix. Counts only increase; the matrix lives for the process
// lifetime and is never reset.
type TransitionAccumulator struct {
	mu     sync.Mutex
	counts TransitionMatrix
}

// NewTransitionAccumulator creates an empty accumulator.
func NewTransitionAccumulator() *TransitionAccumulator {
	return &TransitionAccumulator{counts: make(TransitionMatrix)}
}

// Record increments the from→to counter. Safe to call once per status
// change, including several times within one polling cycle.
func (a *TransitionAccumulator) Record(from, to domain.Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	row, ok := a.counts[from]
	if !ok {
		row = make(map[domain.Status]int)
		a.counts[from] = row
	}
	row[to]++
}

// Snapshot returns a copy of the matrix; the accumulator keeps sole
// ownership of the live counts.
func (a *TransitionAccumulator) Snapshot() TransitionMatrix {
	a.mu.Lock()
	defer a.mu.Unlock()
	copied := make(TransitionMatrix, len(a.counts))
	for from, row := range a.counts {
		copiedRow := make(map[domain.Status]int, len(row))
		for to, count := range row {
			copiedRow[to] = count
		}
		copied[from] = copiedRow
	}
	return copied
}

// HandleEvent folds a status_changed event into the matrix. Registered
// on the dispatcher for that event type only.
func (a *TransitionAccumulator) HandleEvent(_ context.Context, event events.ActivityEvent) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return nil
	}
	a.Record(payload.OldStatus, payload.NewStatus)
	return nil
}
