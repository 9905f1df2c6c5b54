package directory

import "time"

// Profile is an employee record imported from the external workspace
// database. The external id is the source-of-truth key; everything except
// base salary is overwritten on re-import.
type Profile struct {
	ID             int64      `json:"id" db:"id"`
	ExternalID     string     `json:"external_id" db:"external_id"`
	Name           string     `json:"name" db:"name"`
	Position       *string    `json:"position,omitempty" db:"position"`
	Email          *string    `json:"email,omitempty" db:"email"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	Level          *string    `json:"level,omitempty" db:"level"`
	Step           *string    `json:"step,omitempty" db:"step"`
	Team           []string   `json:"team" db:"team"`
	Skills         []string   `json:"skills" db:"skills"`
	Tags           []string   `json:"tags" db:"tags"`
	Groups         []string   `json:"groups" db:"groups"`
	BaseSalary     *float64   `json:"base_salary,omitempty" db:"base_salary"`
	BillableRate   *float64   `json:"billable_rate,omitempty" db:"billable_rate"`
	StartDate      *time.Time `json:"start_date,omitempty" db:"start_date"`
	Timezone       *string    `json:"timezone,omitempty" db:"timezone"`
	ReportsTo      []string   `json:"reports_to" db:"reports_to"`
	Manages        []string   `json:"manages" db:"manages"`
	Tenure         *string    `json:"tenure,omitempty" db:"tenure"`
	LocationFactor *float64   `json:"location_factor,omitempty" db:"location_factor"`
	StepFactor     *float64   `json:"step_factor,omitempty" db:"step_factor"`
	LevelFactor    *float64   `json:"level_factor,omitempty" db:"level_factor"`
	TotalSalary    *float64   `json:"total_salary,omitempty" db:"total_salary"`
	ManagerID      *string    `json:"manager_id,omitempty" db:"-"`
	SyncedAt       time.Time  `json:"synced_at" db:"synced_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// TeamStat aggregates membership for one team.
type TeamStat struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Members []string `json:"members"`
}

// CountStat is a name/count pair for tag and timezone rollups.
type CountStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarises the directory for the dashboard overview widgets.
type Stats struct {
	Teams          []TeamStat  `json:"teams"`
	Tags           []CountStat `json:"tags"`
	Timezones      []CountStat `json:"timezones"`
	TotalEmployees int         `json:"total_employees"`
}
