package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDepartmentNotFound is returned when no department matches the id
var ErrDepartmentNotFound = errors.New("department not found")

// Repository defines the interface for the reference catalog
type Repository interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	ListProcedures(ctx context.Context, departmentID string) ([]Procedure, error)
}

type db interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository reads the catalog from the relational database. The
// catalog is reference data; writes happen through migrations only.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// ListDepartments returns every department, ordered by name.
func (r *PostgresRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: select departments failed: %w", err)
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan failed: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListProcedures returns the procedures owned by one department, ordered by
// name. An unknown department id yields ErrDepartmentNotFound rather than an
// empty list so the handler can answer 404.
func (r *PostgresRepository) ListProcedures(ctx context.Context, departmentID string) ([]Procedure, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, departmentID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("catalog: department lookup failed: %w", err)
	}
	if !exists {
		return nil, ErrDepartmentNotFound
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, department_id FROM procedures WHERE department_id = $1 ORDER BY name`,
		departmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: select procedures failed: %w", err)
	}
	defer rows.Close()

	var out []Procedure
	for rows.Next() {
		var p Procedure
		if err := rows.Scan(&p.ID, &p.Name, &p.DepartmentID); err != nil {
			return nil, fmt.Errorf("catalog: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
