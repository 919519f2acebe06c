package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// HTTPSource polls the snapshot feed of a remote helpdesk backend.
// Used when this service runs alongside an existing deployment instead
// of owning the database.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSource builds a source for the given backend base URL. The
// token, when set, is sent as a bearer credential.
func NewHTTPSource(baseURL, token string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchAll retrieves the full ticket collection. A 429 response maps
// to ErrRateLimited; any other failure maps to TransportError.
func (s *HTTPSource) FetchAll(ctx context.Context) ([]domain.TicketSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/tickets", nil)
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch tickets", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s responded 429: %w", s.baseURL, ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{Op: "fetch tickets", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var payload struct {
		Data []ticketWire `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Op: "decode tickets", Err: err}
	}

	tickets := make([]domain.TicketSnapshot, 0, len(payload.Data))
	for _, wire := range payload.Data {
		tickets = append(tickets, wire.toDomain())
	}
	return tickets, nil
}

// ticketWire mirrors the feed's JSON shape.
type ticketWire struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	Priority     string            `json:"priority"`
	Category     string            `json:"category"`
	AssignedTo   *userWire         `json:"assigned_to"`
	CreatedBy    userWire          `json:"created_by"`
	Client       *userWire         `json:"client"`
	Queue        string            `json:"queue"`
	Interactions []interactionWire `json:"interactions"`
	Comments     []commentWire     `json:"comments"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type userWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type interactionWire struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Author    *userWire         `json:"author"`
	Metadata  map[string]string `json:"metadata"`
	FileCount int               `json:"file_count"`
	CreatedAt time.Time         `json:"created_at"`
}

type commentWire struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    *userWire `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func (w ticketWire) toDomain() domain.TicketSnapshot {
	ticket := domain.TicketSnapshot{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      domain.Status(w.Status),
		Priority:    domain.Priority(w.Priority),
		Category:    w.Category,
		CreatedBy:   domain.UserRef(w.CreatedBy),
		Queue:       w.Queue,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.AssignedTo != nil {
		ref := domain.UserRef(*w.AssignedTo)
		ticket.AssignedTo = &ref
	}
	if w.Client != nil {
		ref := domain.UserRef(*w.Client)
		ticket.Client = &ref
	}
	for _, interaction := range w.Interactions {
		converted := domain.Interaction{
			ID:        interaction.ID,
			TicketID:  w.ID,
			Type:      domain.InteractionType(interaction.Type),
			Content:   interaction.Content,
			Metadata:  interaction.Metadata,
			FileCount: interaction.FileCount,
			CreatedAt: interaction.CreatedAt,
		}
		if interaction.Author != nil {
			ref := domain.UserRef(*interaction.Author)
			converted.Author = &ref
		}
		ticket.Interactions = append(ticket.Interactions, converted)
	}
	for _, comment := range w.Comments {
		converted := domain.Comment{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		}
		if comment.Author != nil {
			ref := domain.UserRef(*comment.Author)
			converted.Author = &ref
		}
		ticket.Comments = append(ticket.Comments, converted)
	}
	return ticket
}
