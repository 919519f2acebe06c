package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket workflow endpoints plus the snapshot
// feed that polling clients consume.
type TicketsHandler struct {
	ticketService *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{ticketService: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.ticketService.CreateTicket(c.Context(), principal.Ref(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Queue:       req.Queue,
		ClientID:    req.ClientID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketSnapshot(ticket)})
}

// List GET /tickets. Serves the complete snapshot collection; this is
// the feed the polling engine diffs against its previous cycle.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.ticketService.ListSnapshots(c.Context())
	if err != nil {
		return err
	}
	data := make([]dto.TicketSnapshotResponse, 0, len(tickets))
	for i := range tickets {
		data = append(data, dto.TicketSnapshot(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": data})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.ticketService.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSnapshot(ticket)})
}

// ChangeStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !validStatus(req.Status) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	ticket, err := h.ticketService.ChangeStatus(c.Context(), principal.Ref(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSnapshot(ticket)})
}

// Assign PATCH /tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.ticketService.AssignTicket(c.Context(), principal.Ref(), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSnapshot(ticket)})
}

// TransferQueue PATCH /tickets/:id/queue.
func (h *TicketsHandler) TransferQueue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TransferQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.ticketService.TransferQueue(c.Context(), principal.Ref(), c.Params("id"), req.Queue)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketSnapshot(ticket)})
}

// AddInteraction POST /tickets/:id/interactions.
func (h *TicketsHandler) AddInteraction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AddInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Content == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	interaction, err := h.ticketService.AddInteraction(c.Context(), principal.Ref(), c.Params("id"), req.Content, req.FileCount)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Interaction(*interaction)})
}

func validStatus(status domain.Status) bool {
	switch status {
	case domain.StatusOpen, domain.StatusInService, domain.StatusPending, domain.StatusResolved, domain.StatusClosed:
		return true
	}
	return false
}

func validPriority(priority domain.Priority) bool {
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
		return true
	}
	return false
}
