package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.TicketSnapshot) error
	GetByID(ctx context.Context, id string) (*domain.TicketSnapshot, error)
	ListAllSnapshots(ctx context.Context) ([]domain.TicketSnapshot, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	Assign(ctx context.Context, id string, assigneeID *string) error
	TransferQueue(ctx context.Context, id, queue string) error
	AddInteraction(ctx context.Context, interaction *domain.Interaction) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.id, t.title, t.description, t.status, t.priority, t.category, t.queue,
        t.created_at, t.updated_at,
        creator.id, creator.name,
        assignee.id, assignee.name,
        client.id, client.name`

const ticketJoins = `
        JOIN users creator ON creator.id = t.created_by
        LEFT JOIN users assignee ON assignee.id = t.assigned_to
        LEFT JOIN users client ON client.id = t.client_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.TicketSnapshot) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, category, created_by, assigned_to, client_id, queue)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CreatedBy.ID,
		refIDOrNil(ticket.AssignedTo),
		refIDOrNil(ticket.Client),
		ticket.Queue,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.TicketSnapshot, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t` + ticketJoins + ` WHERE t.id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	interactions, err := r.listInteractions(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	ticket.Interactions = interactions[id]
	return ticket, nil
}

func (r *ticketRepository) ListAllSnapshots(ctx context.Context) ([]domain.TicketSnapshot, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t` + ticketJoins + ` ORDER BY t.created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.TicketSnapshot
	var ids []string
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
		ids = append(ids, ticket.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return tickets, nil
	}
	interactions, err := r.listInteractions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		tickets[i].Interactions = interactions[tickets[i].ID]
	}
	return tickets, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	return execExpectingRow(ctx, r.pool, query, status, id)
}

func (r *ticketRepository) Assign(ctx context.Context, id string, assigneeID *string) error {
	const query = `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`
	return execExpectingRow(ctx, r.pool, query, assigneeID, id)
}

func (r *ticketRepository) TransferQueue(ctx context.Context, id, queue string) error {
	const query = `UPDATE tickets SET queue=$1, updated_at=NOW() WHERE id=$2`
	return execExpectingRow(ctx, r.pool, query, queue, id)
}

func (r *ticketRepository) AddInteraction(ctx context.Context, interaction *domain.Interaction) error {
	const query = `
        INSERT INTO interactions (id, ticket_id, type, content, author_id, metadata, file_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	var authorID *string
	if interaction.Author != nil {
		authorID = &interaction.Author.ID
	}
	if err := r.pool.QueryRow(ctx, query,
		interaction.ID,
		interaction.TicketID,
		interaction.Type,
		interaction.Content,
		authorID,
		interaction.Metadata,
		interaction.FileCount,
	).Scan(&interaction.CreatedAt); err != nil {
		return err
	}
	const touch = `UPDATE tickets SET updated_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, touch, interaction.TicketID)
	return err
}

// listInteractions loads the timelines for the given tickets, oldest
// first, keyed by ticket ID.
func (r *ticketRepository) listInteractions(ctx context.Context, ticketIDs []string) (map[string][]domain.Interaction, error) {
	const query = `
        SELECT i.id, i.ticket_id, i.type, i.content, i.metadata, i.file_count, i.created_at,
               author.id, author.name
        FROM interactions i
        LEFT JOIN users author ON author.id = i.author_id
        WHERE i.ticket_id = ANY($1)
        ORDER BY i.created_at`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.Interaction, len(ticketIDs))
	for rows.Next() {
		var interaction domain.Interaction
		var authorID, authorName *string
		if err := rows.Scan(
			&interaction.ID,
			&interaction.TicketID,
			&interaction.Type,
			&interaction.Content,
			&interaction.Metadata,
			&interaction.FileCount,
			&interaction.CreatedAt,
			&authorID,
			&authorName,
		); err != nil {
			return nil, err
		}
		if authorID != nil {
			interaction.Author = &domain.UserRef{ID: *authorID, Name: derefOrEmpty(authorName)}
		}
		result[interaction.TicketID] = append(result[interaction.TicketID], interaction)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.TicketSnapshot, error) {
	var ticket domain.TicketSnapshot
	var assigneeID, assigneeName, clientID, clientName *string
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Queue,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.CreatedBy.ID,
		&ticket.CreatedBy.Name,
		&assigneeID,
		&assigneeName,
		&clientID,
		&clientName,
	)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		ticket.AssignedTo = &domain.UserRef{ID: *assigneeID, Name: derefOrEmpty(assigneeName)}
	}
	if clientID != nil {
		ticket.Client = &domain.UserRef{ID: *clientID, Name: derefOrEmpty(clientName)}
	}
	return &ticket, nil
}

func execExpectingRow(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) error {
	cmd, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func refIDOrNil(ref *domain.UserRef) *string {
	if ref == nil {
		return nil
	}
	return &ref.ID
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
