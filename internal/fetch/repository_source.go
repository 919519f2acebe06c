package fetch

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// RepositorySource reads the snapshot feed straight from the local
// database for the all-in-one deployment. Locally originated mutations
// are not special-cased; they surface on the next poll like any other
// change.
type RepositorySource struct {
	tickets repository.TicketRepository
}

// NewRepositorySource wraps the ticket repository as a Source.
func NewRepositorySource(tickets repository.TicketRepository) *RepositorySource {
	return &RepositorySource{tickets: tickets}
}

// FetchAll loads every ticket with its interactions. Database failures
// map to TransportError so the poller retries on the next tick.
func (s *RepositorySource) FetchAll(ctx context.Context) ([]domain.TicketSnapshot, error) {
	tickets, err := s.tickets.ListAllSnapshots(ctx)
	if err != nil {
		return nil, &TransportError{Op: "list snapshots", Err: err}
	}
	return tickets, nil
}
