package delegation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists delegations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all delegations ordered by manager then employee.
func (r *Repository) List(ctx context.Context) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, manager_id, employee_id, created_at FROM delegations ORDER BY manager_id, employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delegation
	for rows.Next() {
		var d Delegation
		if err := rows.Scan(&d.ID, &d.ManagerID, &d.EmployeeID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByManager returns delegations owned by a single manager.
func (r *Repository) ListByManager(ctx context.Context, managerID string) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, manager_id, employee_id, created_at FROM delegations WHERE manager_id = $1 ORDER BY employee_id`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delegation
	for rows.Next() {
		var d Delegation
		if err := rows.Scan(&d.ID, &d.ManagerID, &d.EmployeeID, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a delegation. ErrDuplicate is returned when the pair already
// exists, relying on the unique (manager_id, employee_id) constraint.
func (r *Repository) Create(ctx context.Context, managerID, employeeID string) (Delegation, error) {
	var d Delegation
	err := r.pool.QueryRow(ctx,
		`INSERT INTO delegations (manager_id, employee_id, created_at) VALUES ($1, $2, NOW()) RETURNING id, manager_id, employee_id, created_at`,
		managerID, employeeID,
	).Scan(&d.ID, &d.ManagerID, &d.EmployeeID, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Delegation{}, ErrDuplicate
		}
		return Delegation{}, err
	}
	return d, nil
}

// Delete removes the delegation for the given pair.
func (r *Repository) Delete(ctx context.Context, managerID, employeeID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delegations WHERE manager_id = $1 AND employee_id = $2`, managerID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
