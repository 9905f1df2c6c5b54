// Package importer runs the full directory sync from the external
// workspace database into PostgreSQL.
package importer

import "time"

// SyncRun records the outcome of one sync execution.
type SyncRun struct {
	ID         int64     `json:"id" db:"id"`
	Trigger    string    `json:"trigger" db:"trigger"`
	Success    bool      `json:"success" db:"success"`
	Synced     int       `json:"synced" db:"synced"`
	Deleted    int       `json:"deleted" db:"deleted"`
	Errors     []string  `json:"errors" db:"errors"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
}

// Duration reports how long the run took.
func (r SyncRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Triggers recorded on sync runs.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)
