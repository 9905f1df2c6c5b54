package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for role assignments and
// the profile/delegation snapshots the resolver consumes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListProfiles loads the resolver's view of every profile.
func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT external_id, name, email, team, tags FROM profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ExternalID, &p.Name, &p.Email, &p.Team, &p.Tags); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ListDelegations loads all manager edges.
func (r *Repository) ListDelegations(ctx context.Context) ([]Delegation, error) {
	rows, err := r.pool.Query(ctx, `SELECT manager_id, employee_id FROM delegations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var delegations []Delegation
	for rows.Next() {
		var d Delegation
		if err := rows.Scan(&d.ManagerID, &d.EmployeeID); err != nil {
			return nil, err
		}
		delegations = append(delegations, d)
	}
	return delegations, rows.Err()
}

// GetAssignment fetches the cached role assignment for an email, if any.
func (r *Repository) GetAssignment(ctx context.Context, email string) (*RoleAssignment, error) {
	var a RoleAssignment
	err := r.pool.QueryRow(ctx, `
		SELECT email, name, external_id, role, can_view_all, can_manage_all, can_assign_managers, managed_ids, created_at, updated_at
		FROM role_assignments WHERE email = $1`, email,
	).Scan(&a.Email, &a.Name, &a.ExternalID, &a.Role, &a.CanViewAll, &a.CanManageAll, &a.CanAssignManagers, &a.ManagedIDs, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// UpsertAssignment stores a role assignment keyed by email.
func (r *Repository) UpsertAssignment(ctx context.Context, a RoleAssignment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_assignments (email, name, external_id, role, can_view_all, can_manage_all, can_assign_managers, managed_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			external_id = EXCLUDED.external_id,
			role = EXCLUDED.role,
			can_view_all = EXCLUDED.can_view_all,
			can_manage_all = EXCLUDED.can_manage_all,
			can_assign_managers = EXCLUDED.can_assign_managers,
			managed_ids = EXCLUDED.managed_ids,
			updated_at = NOW()`,
		a.Email, a.Name, a.ExternalID, a.Role, a.CanViewAll, a.CanManageAll, a.CanAssignManagers, a.ManagedIDs)
	return err
}

// InvalidateAssignments drops every cached assignment so the next access
// rebuilds it from the current snapshots.
func (r *Repository) InvalidateAssignments(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_assignments`)
	return err
}
