package citizens

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

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores citizens in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("citizens: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row. The dni column carries a unique constraint, so a
// duplicate registration surfaces as ErrDuplicateDNI.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateCitizenRequest) (*Citizen, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO citizens (id, dni, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.DNI,
		req.FirstName,
		req.LastName,
		req.Email,
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateDNI
		}
		return nil, fmt.Errorf("citizens: insert failed: %w", err)
	}

	return &Citizen{
		ID:        id.String(),
		DNI:       req.DNI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		CreatedAt: createdAt,
	}, nil
}

// List returns a page of citizens ordered by registration time.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*Citizen, error) {
	query := `
		SELECT id, dni, first_name, last_name, email, created_at
		FROM citizens
		ORDER BY created_at
		OFFSET $1 LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("citizens: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Citizen
	for rows.Next() {
		var c Citizen
		if err := rows.Scan(&c.ID, &c.DNI, &c.FirstName, &c.LastName, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("citizens: scan failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetByDNI fetches a citizen by identity number.
func (r *PostgresRepository) GetByDNI(ctx context.Context, dni string) (*Citizen, error) {
	query := `
		SELECT id, dni, first_name, last_name, email, created_at
		FROM citizens
		WHERE dni = $1
	`
	var c Citizen
	if err := r.pool.QueryRow(ctx, query, dni).Scan(
		&c.ID,
		&c.DNI,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCitizenNotFound
		}
		return nil, fmt.Errorf("citizens: select failed: %w", err)
	}
	return &c, nil
}

// Update overwrites the mutable fields that are set in the request.
func (r *PostgresRepository) Update(ctx context.Context, dni string, req *UpdateCitizenRequest) (*Citizen, error) {
	query := `
		UPDATE citizens
		SET first_name = COALESCE(NULLIF($2, ''), first_name),
		    last_name  = COALESCE(NULLIF($3, ''), last_name),
		    email      = COALESCE(NULLIF($4, ''), email)
		WHERE dni = $1
		RETURNING id, dni, first_name, last_name, email, created_at
	`
	var c Citizen
	if err := r.pool.QueryRow(ctx, query, dni, req.FirstName, req.LastName, req.Email).Scan(
		&c.ID,
		&c.DNI,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCitizenNotFound
		}
		return nil, fmt.Errorf("citizens: update failed: %w", err)
	}
	return &c, nil
}

// Delete removes the citizen row.
func (r *PostgresRepository) Delete(ctx context.Context, dni string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM citizens WHERE dni = $1`, dni)
	if err != nil {
		return fmt.Errorf("citizens: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCitizenNotFound
	}
	return nil
}
