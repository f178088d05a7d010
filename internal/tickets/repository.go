package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for ticket storage
type Repository interface {
	Create(ctx context.Context, req *CreateTicketRequest) (*Ticket, error)
	List(ctx context.Context, offset, limit int) ([]*Ticket, error)
	GetByID(ctx context.Context, id string) (*Ticket, error)
	UpdateStatus(ctx context.Context, id, status string) (*Ticket, error)
}

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores tickets in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("tickets: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const ticketColumns = `t.id, t.citizen_id, c.dni, t.subject, t.description, t.status, t.created_at, t.updated_at`

// Create resolves the citizen by DNI and opens a ticket against them.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateTicketRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var citizenID string
	if err := r.pool.QueryRow(ctx,
		`SELECT id FROM citizens WHERE dni = $1`, req.CitizenDNI,
	).Scan(&citizenID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownCitizen
		}
		return nil, fmt.Errorf("tickets: citizen lookup failed: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO tickets (id, citizen_id, subject, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		citizenID,
		req.Subject,
		req.Description,
		StatusOpen,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("tickets: insert failed: %w", err)
	}

	return &Ticket{
		ID:          id.String(),
		CitizenID:   citizenID,
		CitizenDNI:  req.CitizenDNI,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      StatusOpen,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// List returns a page of tickets, newest first.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t JOIN citizens c ON c.id = t.citizen_id
		ORDER BY t.created_at DESC
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("tickets: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches one ticket.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t JOIN citizens c ON c.id = t.citizen_id
		WHERE t.id = $1
	`
	t, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

// UpdateStatus moves the ticket to a new state.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Ticket, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	query := `
		UPDATE tickets t
		SET status = $2, updated_at = now()
		FROM citizens c
		WHERE t.id = $1 AND c.id = t.citizen_id
		RETURNING ` + ticketColumns + `
	`
	t, err := scanTicket(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTicket(row scannable) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(
		&t.ID,
		&t.CitizenID,
		&t.CitizenDNI,
		&t.Subject,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("tickets: scan failed: %w", err)
	}
	return &t, nil
}
