package domain

import (
	"strings"
	"time"
)

// Status enumerates ticket lifecycle states. The values are the wire
// labels used by the helpdesk, kept verbatim so snapshots round-trip
// without translation.
type Status string

const (
	StatusOpen      Status = "aberto"
	StatusInService Status = "em_atendimento"
	StatusPending   Status = "pendente"
	StatusResolved  Status = "resolvido"
	StatusClosed    Status = "fechado"
)

// Priority enumerates SLA urgency.
type Priority string

const (
	PriorityLow    Priority = "baixa"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

// QueueUnassigned is the sentinel label for tickets that sit in no
// queue. Empty and absent queue values normalize to it.
const QueueUnassigned = "nao_atribuida"

// TicketSnapshot is a full copy of one ticket's observable fields at a
// point in time. Identity is the ID; every other field is a
// per-snapshot value copy. The engine never mutates a snapshot, it
// only compares two copies.
type TicketSnapshot struct {
	ID           string
	Title        string
	Description  string
	Status       Status
	Priority     Priority
	Category     string
	AssignedTo   *UserRef
	CreatedBy    UserRef
	Client       *UserRef
	Queue        string
	Interactions []Interaction
	Comments     []Comment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeQueue maps a raw queue label to its canonical form. Empty
// or whitespace-only labels collapse to QueueUnassigned.
func NormalizeQueue(queue string) string {
	normalized := strings.ToLower(strings.TrimSpace(queue))
	if normalized == "" {
		return QueueUnassigned
	}
	return normalized
}

// Comment is a legacy free-text annotation predating interactions.
// Carried on snapshots for display only; the engine does not classify
// comment changes.
type Comment struct {
	ID        string
	Content   string
	Author    *UserRef
	CreatedAt time.Time
}
