package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Category    string          `json:"category"`
	Queue       string          `json:"queue"`
	ClientID    *string         `json:"client_id"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.Status `json:"status"`
}

// AssignTicketRequest payload. A nil assignee returns the ticket to
// the pool.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// TransferQueueRequest payload.
type TransferQueueRequest struct {
	Queue string `json:"queue"`
}

// AddInteractionRequest payload.
type AddInteractionRequest struct {
	Content   string `json:"content"`
	FileCount int    `json:"file_count"`
}

// UserRefResponse is the embedded user reference.
type UserRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InteractionResponse is one timeline entry.
type InteractionResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Author    *UserRefResponse  `json:"author,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	FileCount int               `json:"file_count"`
	CreatedAt time.Time         `json:"created_at"`
}

// TicketSnapshotResponse is the feed shape a polling engine consumes.
type TicketSnapshotResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.Status         `json:"status"`
	Priority     domain.Priority       `json:"priority"`
	Category     string                `json:"category"`
	AssignedTo   *UserRefResponse      `json:"assigned_to,omitempty"`
	CreatedBy    UserRefResponse       `json:"created_by"`
	Client       *UserRefResponse      `json:"client,omitempty"`
	Queue        string                `json:"queue"`
	Interactions []InteractionResponse `json:"interactions"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketSnapshot converts a domain snapshot to its response shape.
func TicketSnapshot(ticket *domain.TicketSnapshot) TicketSnapshotResponse {
	response := TicketSnapshotResponse{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		Category:     ticket.Category,
		CreatedBy:    UserRefResponse(ticket.CreatedBy),
		Queue:        ticket.Queue,
		Interactions: make([]InteractionResponse, 0, len(ticket.Interactions)),
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.AssignedTo != nil {
		ref := UserRefResponse(*ticket.AssignedTo)
		response.AssignedTo = &ref
	}
	if ticket.Client != nil {
		ref := UserRefResponse(*ticket.Client)
		response.Client = &ref
	}
	for _, interaction := range ticket.Interactions {
		response.Interactions = append(response.Interactions, Interaction(interaction))
	}
	return response
}

// Interaction converts a domain interaction to its response shape.
func Interaction(interaction domain.Interaction) InteractionResponse {
	response := InteractionResponse{
		ID:        interaction.ID,
		Type:      string(interaction.Type),
		Content:   interaction.Content,
		Metadata:  interaction.Metadata,
		FileCount: interaction.FileCount,
		CreatedAt: interaction.CreatedAt,
	}
	if interaction.Author != nil {
		ref := UserRefResponse(*interaction.Author)
		response.Author = &ref
	}
	return response
}
