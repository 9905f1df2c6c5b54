package importer

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamdeck/teamdeck/internal/directory"
)

// Repository persists imported profiles and sync run diagnostics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListExternalIDs returns the external ids of every stored profile.
func (r *Repository) ListExternalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT external_id FROM profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Upsert writes a profile keyed by external id. Every field follows the
// source except base_salary, which keeps the stored value once set.
func (r *Repository) Upsert(ctx context.Context, p directory.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (
			external_id, name, position, email, phone, level, step,
			team, skills, tags, groups, base_salary, billable_rate,
			start_date, timezone, reports_to, manages, tenure,
			location_factor, step_factor, level_factor, total_salary,
			synced_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21, $22,
			NOW(), NOW(), NOW()
		)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			level = EXCLUDED.level,
			step = EXCLUDED.step,
			team = EXCLUDED.team,
			skills = EXCLUDED.skills,
			tags = EXCLUDED.tags,
			groups = EXCLUDED.groups,
			base_salary = COALESCE(profiles.base_salary, EXCLUDED.base_salary),
			billable_rate = EXCLUDED.billable_rate,
			start_date = EXCLUDED.start_date,
			timezone = EXCLUDED.timezone,
			reports_to = EXCLUDED.reports_to,
			manages = EXCLUDED.manages,
			tenure = EXCLUDED.tenure,
			location_factor = EXCLUDED.location_factor,
			step_factor = EXCLUDED.step_factor,
			level_factor = EXCLUDED.level_factor,
			total_salary = EXCLUDED.total_salary,
			synced_at = NOW(),
			updated_at = NOW()`,
		p.ExternalID, p.Name, p.Position, p.Email, p.Phone, p.Level, p.Step,
		p.Team, p.Skills, p.Tags, p.Groups, p.BaseSalary, p.BillableRate,
		p.StartDate, p.Timezone, p.ReportsTo, p.Manages, p.Tenure,
		p.LocationFactor, p.StepFactor, p.LevelFactor, p.TotalSalary,
	)
	return err
}

// DeleteByExternalID removes a profile that left the source database.
func (r *Repository) DeleteByExternalID(ctx context.Context, externalID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE external_id = $1`, externalID)
	return err
}

// InsertRun records the outcome of a sync run.
func (r *Repository) InsertRun(ctx context.Context, run SyncRun) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sync_runs (trigger, success, synced, deleted, errors, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.Trigger, run.Success, run.Synced, run.Deleted, errs, run.StartedAt, run.FinishedAt,
	)
	return err
}

// ListRuns returns the most recent sync runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, trigger, success, synced, deleted, errors, started_at, finished_at FROM sync_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []SyncRun{}
	for rows.Next() {
		var run SyncRun
		if err := rows.Scan(&run.ID, &run.Trigger, &run.Success, &run.Synced, &run.Deleted, &run.Errors, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
