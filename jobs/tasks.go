// Package jobs wires background tasks onto the Asynq queue.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/teamdeck/teamdeck/internal/importer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDirectorySync is the task type for the full directory sync.
	TaskDirectorySync = "directory:sync"
)

// DirectorySyncPayload carries scheduling metadata for a sync task.
type DirectorySyncPayload struct {
	Trigger      string    `json:"trigger"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDirectorySyncTask constructs an Asynq task for the directory sync.
func NewDirectorySyncTask(trigger string, at time.Time) (*asynq.Task, error) {
	if trigger == "" {
		trigger = importer.TriggerScheduled
	}
	body, err := json.Marshal(DirectorySyncPayload{Trigger: trigger, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDirectorySync, body, asynq.Queue(QueueDefault)), nil
}
