package scorecard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamdeck/teamdeck/internal/platform/db"
)

// Repository persists scorecards in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmployee loads the scorecard for one employee with its outcomes and
// competencies.
func (r *Repository) GetByEmployee(ctx context.Context, employeeID string) (*Scorecard, error) {
	var sc Scorecard
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_id, role, mission, created_by, created_at, updated_at FROM scorecards WHERE employee_id = $1`,
		employeeID,
	).Scan(&sc.ID, &sc.EmployeeID, &sc.Role, &sc.Mission, &sc.CreatedBy, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if sc.Outcomes, err = r.listOutcomes(ctx, sc.ID); err != nil {
		return nil, err
	}
	if sc.Competencies, err = r.listCompetencies(ctx, sc.ID); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Replace upserts the scorecard header and replaces its outcomes and
// competencies within a single transaction.
func (r *Repository) Replace(ctx context.Context, in SaveInput, createdBy string) (*Scorecard, error) {
	var scorecardID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO scorecards (employee_id, role, mission, created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())
			 ON CONFLICT (employee_id) DO UPDATE SET role = EXCLUDED.role, mission = EXCLUDED.mission, updated_at = NOW()
			 RETURNING id`,
			in.EmployeeID, in.Role, in.Mission, createdBy,
		).Scan(&scorecardID)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM scorecard_outcomes WHERE scorecard_id = $1`, scorecardID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM scorecard_competencies WHERE scorecard_id = $1`, scorecardID); err != nil {
			return err
		}

		for i, o := range in.Outcomes {
			details := o.Details
			if details == nil {
				details = []string{}
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO scorecard_outcomes (scorecard_id, order_index, description, details, rating, comments) VALUES ($1, $2, $3, $4, $5, $6)`,
				scorecardID, i+1, o.Description, details, o.Rating, o.Comments,
			); err != nil {
				return err
			}
		}
		for _, c := range in.Competencies {
			if _, err := tx.Exec(ctx,
				`INSERT INTO scorecard_competencies (scorecard_id, competency, rating, comments) VALUES ($1, $2, $3, $4)`,
				scorecardID, c.Competency, c.Rating, c.Comments,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByEmployee(ctx, in.EmployeeID)
}

// DeleteByEmployee removes the scorecard and its child rows.
func (r *Repository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scorecards WHERE employee_id = $1`, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listOutcomes(ctx context.Context, scorecardID int64) ([]Outcome, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, scorecard_id, order_index, description, details, rating, comments FROM scorecard_outcomes WHERE scorecard_id = $1 ORDER BY order_index`,
		scorecardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Outcome{}
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.ID, &o.ScorecardID, &o.OrderIndex, &o.Description, &o.Details, &o.Rating, &o.Comments); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) listCompetencies(ctx context.Context, scorecardID int64) ([]Competency, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, scorecard_id, competency, rating, comments FROM scorecard_competencies WHERE scorecard_id = $1 ORDER BY competency`,
		scorecardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Competency{}
	for rows.Next() {
		var c Competency
		if err := rows.Scan(&c.ID, &c.ScorecardID, &c.Competency, &c.Rating, &c.Comments); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
