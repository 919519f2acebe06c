package domain

import "time"

// InteractionType differentiates entries in a ticket's timeline.
type InteractionType string

const (
	InteractionUser          InteractionType = "user"
	InteractionSystem        InteractionType = "system"
	InteractionStatusChange  InteractionType = "status_change"
	InteractionAssignment    InteractionType = "assignment"
	InteractionQueueTransfer InteractionType = "queue_transfer"
)

// Interaction is one entry in a ticket's ordered timeline. Metadata
// carries old/new values for system-written entries. Attached files
// are opaque to the engine beyond their count.
type Interaction struct {
	ID        string
	TicketID  string
	Type      InteractionType
	Content   string
	Author    *UserRef
	Metadata  map[string]string
	FileCount int
	CreatedAt time.Time
}
