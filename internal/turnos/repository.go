package turnos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository defines the interface for turno storage
type Repository interface {
	Create(ctx context.Context, req *CreateTurnoRequest) (*Turno, error)
	List(ctx context.Context, offset, limit int) ([]*Turno, error)
	GetByID(ctx context.Context, id string) (*Turno, error)
	Cancel(ctx context.Context, id string) (*Turno, error)
}

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores turnos in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("turnos: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const turnoColumns = `t.id, t.citizen_id, c.dni, t.procedure_id, t.scheduled_at, t.status, t.created_at`

// Create resolves the citizen by DNI, verifies the procedure and books the
// slot. A partial unique index on (procedure_id, scheduled_at) for confirmed
// turnos backs the conflict check, so concurrent bookings of the same slot
// cannot both commit.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateTurnoRequest) (*Turno, error) {
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
		return nil, fmt.Errorf("turnos: citizen lookup failed: %w", err)
	}

	var procedureExists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM procedures WHERE id = $1)`, req.ProcedureID,
	).Scan(&procedureExists); err != nil {
		return nil, fmt.Errorf("turnos: procedure lookup failed: %w", err)
	}
	if !procedureExists {
		return nil, ErrUnknownProcedure
	}

	id := uuid.New()
	query := `
		INSERT INTO turnos (id, citizen_id, procedure_id, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		citizenID,
		req.ProcedureID,
		req.ScheduledAt.UTC(),
		StatusConfirmed,
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("turnos: insert failed: %w", err)
	}

	return &Turno{
		ID:          id.String(),
		CitizenID:   citizenID,
		CitizenDNI:  req.CitizenDNI,
		ProcedureID: req.ProcedureID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      StatusConfirmed,
		CreatedAt:   createdAt,
	}, nil
}

// List returns a page of turnos, soonest first.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*Turno, error) {
	query := `
		SELECT ` + turnoColumns + `
		FROM turnos t JOIN citizens c ON c.id = t.citizen_id
		ORDER BY t.scheduled_at
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("turnos: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Turno
	for rows.Next() {
		t, err := scanTurno(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches one turno.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Turno, error) {
	query := `
		SELECT ` + turnoColumns + `
		FROM turnos t JOIN citizens c ON c.id = t.citizen_id
		WHERE t.id = $1
	`
	t, err := scanTurno(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTurnoNotFound
		}
		return nil, err
	}
	return t, nil
}

// Cancel marks the turno cancelled, releasing its slot. Cancelling an already
// cancelled turno is a no-op that returns the current row.
func (r *PostgresRepository) Cancel(ctx context.Context, id string) (*Turno, error) {
	query := `
		UPDATE turnos t
		SET status = $2
		FROM citizens c
		WHERE t.id = $1 AND c.id = t.citizen_id
		RETURNING ` + turnoColumns + `
	`
	t, err := scanTurno(r.pool.QueryRow(ctx, query, id, StatusCancelled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTurnoNotFound
		}
		return nil, err
	}
	return t, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTurno(row scannable) (*Turno, error) {
	var t Turno
	if err := row.Scan(
		&t.ID,
		&t.CitizenID,
		&t.CitizenDNI,
		&t.ProcedureID,
		&t.ScheduledAt,
		&t.Status,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("turnos: scan failed: %w", err)
	}
	return &t, nil
}
