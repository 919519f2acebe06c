package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows. Every mutation also
// writes the matching typed interaction row, so the change surfaces on
// the snapshot feed exactly the way the engine expects: a status
// change is a status field change plus a status_change interaction,
// and the differencer reports the field change without double-counting
// the interaction.
type TicketService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo, users: deps.UserRepo}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	Category    string
	Queue       string
	ClientID    *string
}

// CreateTicket creates a ticket on behalf of the creator.
func (s *TicketService) CreateTicket(ctx context.Context, creator domain.UserRef, input TicketCreateInput) (*domain.TicketSnapshot, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	ticket := &domain.TicketSnapshot{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusOpen,
		Priority:    input.Priority,
		Category:    input.Category,
		CreatedBy:   creator,
		Queue:       input.Queue,
	}
	if input.ClientID != nil {
		client, err := s.users.GetByID(ctx, *input.ClientID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("client", nil)
			}
			return nil, err
		}
		ref := client.Ref()
		ticket.Client = &ref
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ChangeStatus moves a ticket to a new status and records the
// transition as a status_change interaction with old/new metadata.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.UserRef, ticketID string, status domain.Status) (*domain.TicketSnapshot, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == status {
		return nil, apperrors.NewConflict("ticket already in requested status", nil)
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, status); err != nil {
		return nil, err
	}
	interaction := &domain.Interaction{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		Type:     domain.InteractionStatusChange,
		Content:  fmt.Sprintf("status changed from %s to %s", ticket.Status, status),
		Author:   &actor,
		Metadata: map[string]string{"old_status": string(ticket.Status), "new_status": string(status)},
	}
	if err := s.tickets.AddInteraction(ctx, interaction); err != nil {
		return nil, err
	}
	return s.getTicket(ctx, ticketID)
}

// AssignTicket hands a ticket to a technician, or back to the pool
// when assigneeID is nil.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.UserRef, ticketID string, assigneeID *string) (*domain.TicketSnapshot, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	content := "ticket returned to the unassigned pool"
	metadata := map[string]string{"old_assignee": refIDOrEmpty(ticket.AssignedTo)}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("assignee", nil)
			}
			return nil, err
		}
		if assignee.Role != domain.RoleTechnician && assignee.Role != domain.RoleTechnicianN2 && assignee.Role != domain.RoleAdmin {
			return nil, apperrors.NewValidationError("assignee must be a technician", nil)
		}
		content = fmt.Sprintf("ticket assigned to %s", assignee.Name)
		metadata["new_assignee"] = assignee.ID
	}

	if err := s.tickets.Assign(ctx, ticketID, assigneeID); err != nil {
		return nil, err
	}
	interaction := &domain.Interaction{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		Type:     domain.InteractionAssignment,
		Content:  content,
		Author:   &actor,
		Metadata: metadata,
	}
	if err := s.tickets.AddInteraction(ctx, interaction); err != nil {
		return nil, err
	}
	return s.getTicket(ctx, ticketID)
}

// TransferQueue moves a ticket between work-routing queues.
func (s *TicketService) TransferQueue(ctx context.Context, actor domain.UserRef, ticketID, queue string) (*domain.TicketSnapshot, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldQueue := domain.NormalizeQueue(ticket.Queue)
	newQueue := domain.NormalizeQueue(queue)
	if oldQueue == newQueue {
		return nil, apperrors.NewConflict("ticket already in requested queue", nil)
	}
	if err := s.tickets.TransferQueue(ctx, ticketID, queue); err != nil {
		return nil, err
	}
	interaction := &domain.Interaction{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		Type:     domain.InteractionQueueTransfer,
		Content:  fmt.Sprintf("ticket moved from queue %s to %s", oldQueue, newQueue),
		Author:   &actor,
		Metadata: map[string]string{"old_queue": oldQueue, "new_queue": newQueue},
	}
	if err := s.tickets.AddInteraction(ctx, interaction); err != nil {
		return nil, err
	}
	return s.getTicket(ctx, ticketID)
}

// AddInteraction appends a user-authored entry to a ticket's timeline.
func (s *TicketService) AddInteraction(ctx context.Context, actor domain.UserRef, ticketID, content string, fileCount int) (*domain.Interaction, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	interaction := &domain.Interaction{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		Type:      domain.InteractionUser,
		Content:   content,
		Author:    &actor,
		FileCount: fileCount,
	}
	if err := s.tickets.AddInteraction(ctx, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

// GetTicket loads one ticket with its timeline.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error) {
	return s.getTicket(ctx, ticketID)
}

// ListSnapshots returns the full collection, the shape the snapshot
// feed serves.
func (s *TicketService) ListSnapshots(ctx context.Context) ([]domain.TicketSnapshot, error) {
	return s.tickets.ListAllSnapshots(ctx)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func refIDOrEmpty(ref *domain.UserRef) string {
	if ref == nil {
		return ""
	}
	return ref.ID
}
