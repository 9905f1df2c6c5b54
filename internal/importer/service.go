package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamdeck/teamdeck/internal/directory"
	"github.com/teamdeck/teamdeck/internal/workspace"
)

// SourcePort fetches the full record set from the external workspace
// database.
type SourcePort interface {
	ListAll(ctx context.Context) ([]workspace.Record, error)
}

// RepositoryPort defines persistence operations for the importer.
type RepositoryPort interface {
	ListExternalIDs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, p directory.Profile) error
	DeleteByExternalID(ctx context.Context, externalID string) error
	InsertRun(ctx context.Context, run SyncRun) error
	ListRuns(ctx context.Context, limit int) ([]SyncRun, error)
}

// AccessPort invalidates cached role assignments after a sync, since team
// and tag changes can move people between roles.
type AccessPort interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates the full sync: upsert every source record, delete
// stored profiles absent from the source, collect per-record failures
// without aborting the batch, and persist the run result.
type Service struct {
	source SourcePort
	repo   RepositoryPort
	access AccessPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(source SourcePort, repo RepositoryPort, access AccessPort, logger *slog.Logger) *Service {
	return &Service{source: source, repo: repo, access: access, logger: logger}
}

// Run executes one full sync and returns its diagnostics. The returned
// error is non-nil only when the source fetch itself fails; per-record
// failures are reported inside the run.
func (s *Service) Run(ctx context.Context, trigger string) (SyncRun, error) {
	run := SyncRun{Trigger: trigger, StartedAt: time.Now().UTC()}

	records, err := s.source.ListAll(ctx)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("fetch source records: %v", err))
		s.finish(ctx, &run)
		return run, fmt.Errorf("importer: %w", err)
	}

	current := make(map[string]struct{}, len(records))
	for _, rec := range records {
		current[rec.ID] = struct{}{}
	}

	existing, err := s.repo.ListExternalIDs(ctx)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("list stored profiles: %v", err))
		s.finish(ctx, &run)
		return run, fmt.Errorf("importer: %w", err)
	}
	for _, id := range existing {
		if _, ok := current[id]; ok {
			continue
		}
		if err := s.repo.DeleteByExternalID(ctx, id); err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("delete profile %s: %v", id, err))
			continue
		}
		run.Deleted++
	}

	for _, rec := range records {
		profile := transformRecord(rec)
		if err := s.repo.Upsert(ctx, profile); err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("sync profile %s: %v", rec.ID, err))
			continue
		}
		run.Synced++
	}

	if err := s.access.Invalidate(ctx); err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("invalidate role assignments: %v", err))
	}

	s.finish(ctx, &run)
	s.logger.Info("directory sync finished",
		slog.String("trigger", trigger),
		slog.Int("synced", run.Synced),
		slog.Int("deleted", run.Deleted),
		slog.Int("errors", len(run.Errors)),
		slog.Duration("duration", run.Duration()),
	)
	return run, nil
}

// Runs returns recent sync diagnostics.
func (s *Service) Runs(ctx context.Context, limit int) ([]SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRuns(ctx, limit)
}

func (s *Service) finish(ctx context.Context, run *SyncRun) {
	run.FinishedAt = time.Now().UTC()
	run.Success = len(run.Errors) == 0
	if err := s.repo.InsertRun(ctx, *run); err != nil {
		s.logger.Warn("persist sync run", slog.Any("error", err))
	}
}
