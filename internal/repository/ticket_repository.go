package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	UpdateForwardStatus(ctx context.Context, id string, status domain.ForwardStatus, forwardedAt *time.Time) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, issue_title, issue_description, user_email, issue_category, forward_status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.IssueTitle,
		ticket.IssueDescription,
		ticket.UserEmail,
		ticket.IssueCategory,
		ticket.ForwardStatus,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, issue_title, issue_description, user_email, issue_category,
               forward_status, forwarded_at, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.IssueTitle,
		&ticket.IssueDescription,
		&ticket.UserEmail,
		&ticket.IssueCategory,
		&ticket.ForwardStatus,
		&ticket.ForwardedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListAll returns every stored ticket ordered by creation time. Bulk
// forwarding relies on this ordering.
func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, issue_title, issue_description, user_email, issue_category,
               forward_status, forwarded_at, created_at, updated_at
        FROM tickets ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.IssueTitle,
			&ticket.IssueDescription,
			&ticket.UserEmail,
			&ticket.IssueCategory,
			&ticket.ForwardStatus,
			&ticket.ForwardedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) UpdateForwardStatus(ctx context.Context, id string, status domain.ForwardStatus, forwardedAt *time.Time) error {
	const query = `
        UPDATE tickets SET forward_status=$1, forwarded_at=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, forwardedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
