package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
)

// ErrNotFound indicates the profile does not exist.
var ErrNotFound = fmt.Errorf("directory: profile %w", httpx.ErrNotFound)

const profileColumns = `
	id, external_id, name, position, email, phone, level, step,
	team, skills, tags, groups, base_salary, billable_rate, start_date,
	timezone, reports_to, manages, tenure, location_factor, step_factor,
	level_factor, total_salary, synced_at, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListProfiles returns all profiles ordered for the directory view.
func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY team, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetByExternalID fetches one profile.
func (r *Repository) GetByExternalID(ctx context.Context, externalID string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE external_id = $1`, externalID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListDelegationPairs returns (manager, employee) edges for the manager join.
func (r *Repository) ListDelegationPairs(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT manager_id, employee_id FROM delegations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byEmployee := make(map[string]string)
	for rows.Next() {
		var managerID, employeeID string
		if err := rows.Scan(&managerID, &employeeID); err != nil {
			return nil, err
		}
		byEmployee[employeeID] = managerID
	}
	return byEmployee, rows.Err()
}

// UpdateBaseSalary sets the stored salary for a profile.
func (r *Repository) UpdateBaseSalary(ctx context.Context, externalID string, salary float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET base_salary = $2, updated_at = NOW() WHERE external_id = $1`, externalID, salary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByExternalID removes a profile.
func (r *Repository) DeleteByExternalID(ctx context.Context, externalID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE external_id = $1`, externalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.ExternalID, &p.Name, &p.Position, &p.Email, &p.Phone, &p.Level, &p.Step,
		&p.Team, &p.Skills, &p.Tags, &p.Groups, &p.BaseSalary, &p.BillableRate, &p.StartDate,
		&p.Timezone, &p.ReportsTo, &p.Manages, &p.Tenure, &p.LocationFactor, &p.StepFactor,
		&p.LevelFactor, &p.TotalSalary, &p.SyncedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
