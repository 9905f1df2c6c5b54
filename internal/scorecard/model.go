// Package scorecard manages per-employee KPI scorecards.
package scorecard

import (
	"fmt"
	"time"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
)

// ErrNotFound indicates the scorecard does not exist.
var ErrNotFound = fmt.Errorf("scorecard: %w", httpx.ErrNotFound)

// Scorecard describes the role, mission and measured outcomes for one
// employee. Saving replaces outcomes and competencies wholesale.
type Scorecard struct {
	ID           int64        `json:"id" db:"id"`
	EmployeeID   string       `json:"employee_id" db:"employee_id"`
	Role         string       `json:"role" db:"role"`
	Mission      *string      `json:"mission" db:"mission"`
	CreatedBy    string       `json:"created_by" db:"created_by"`
	Outcomes     []Outcome    `json:"outcomes"`
	Competencies []Competency `json:"competencies"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Outcome is an ordered, measurable result on a scorecard.
type Outcome struct {
	ID          int64    `json:"id" db:"id"`
	ScorecardID int64    `json:"-" db:"scorecard_id"`
	OrderIndex  int      `json:"order_index" db:"order_index"`
	Description string   `json:"description" db:"description"`
	Details     []string `json:"details" db:"details"`
	Rating      *int     `json:"rating" db:"rating"`
	Comments    *string  `json:"comments" db:"comments"`
}

// Competency is a rated capability on a scorecard, listed alphabetically.
type Competency struct {
	ID          int64   `json:"id" db:"id"`
	ScorecardID int64   `json:"-" db:"scorecard_id"`
	Competency  string  `json:"competency" db:"competency"`
	Rating      *int    `json:"rating" db:"rating"`
	Comments    *string `json:"comments" db:"comments"`
}
