package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/teamdeck/teamdeck/internal/importer"
	jobmetrics "github.com/teamdeck/teamdeck/internal/jobs"
)

// NewDirectorySyncHandler builds the Asynq handler that executes a full
// directory sync via the importer service.
func NewDirectorySyncHandler(svc *importer.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload DirectorySyncPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		tracker := metrics.Track(TaskDirectorySync)
		run, err := svc.Run(ctx, payload.Trigger)
		if err != nil {
			logger.Error("directory sync task", slog.Any("error", err))
			return tracker.End(err)
		}
		metrics.AddRecords("synced", run.Synced)
		metrics.AddRecords("deleted", run.Deleted)
		metrics.AddRecords("errored", len(run.Errors))
		if !run.Success {
			logger.Warn("directory sync finished with errors",
				slog.Int("synced", run.Synced),
				slog.Int("deleted", run.Deleted),
				slog.Int("errors", len(run.Errors)),
			)
		}
		return tracker.End(nil)
	}
}
