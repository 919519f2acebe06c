package engine

import (
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SnapshotStore holds the last-known ticket collection. The polling
// cycle is the only writer; the collection is swapped wholesale after
// a full diff pass so readers never observe a partial update.
type SnapshotStore struct {
	mu       sync.RWMutex
	tickets  map[string]domain.TicketSnapshot
	order    []string
	lastPoll time.Time
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{tickets: make(map[string]domain.TicketSnapshot)}
}

// Replace swaps in a new collection observed at the given time. The
// previous collection is discarded unconditionally, whether or not the
// diff produced events, so the next comparison always runs against the
// most recently observed state.
func (s *SnapshotStore) Replace(tickets []domain.TicketSnapshot, observedAt time.Time) {
	replacement := make(map[string]domain.TicketSnapshot, len(tickets))
	order := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		replacement[ticket.ID] = ticket
		order = append(order, ticket.ID)
	}

	s.mu.Lock()
	s.tickets = replacement
	s.order = order
	s.lastPoll = observedAt
	s.mu.Unlock()
}

// Get returns the last-known snapshot for a ticket.
func (s *SnapshotStore) Get(id string) (domain.TicketSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	return ticket, ok
}

// List returns the collection in observed order.
func (s *SnapshotStore) List() []domain.TicketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tickets := make([]domain.TicketSnapshot, 0, len(s.order))
	for _, id := range s.order {
		tickets = append(tickets, s.tickets[id])
	}
	return tickets
}

// Len reports the number of tickets in the last-known collection.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

// LastPoll returns when the collection was last replaced. Zero until
// the first successful fetch; staleness is always observable here.
func (s *SnapshotStore) LastPoll() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPoll
}
