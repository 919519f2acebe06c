// Package fetch defines the snapshot feed contract the engine polls,
// with implementations for a remote helpdesk backend and for the local
// database.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Source produces the full ticket collection on demand. A failed fetch
// never invalidates previously fetched data; the caller decides how to
// back off based on the error kind.
type Source interface {
	FetchAll(ctx context.Context) ([]domain.TicketSnapshot, error)
}

// ErrRateLimited signals the backend refused the fetch because the
// caller is polling too fast. The poller reacts by entering cooldown.
var ErrRateLimited = errors.New("ticket source rate limited")

// TransportError wraps any other recoverable fetch failure. The poller
// retries on its next scheduled tick.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ticket source: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
