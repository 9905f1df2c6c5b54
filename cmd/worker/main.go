package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/app"
	"github.com/teamdeck/teamdeck/internal/importer"
	jobmetrics "github.com/teamdeck/teamdeck/internal/jobs"
	"github.com/teamdeck/teamdeck/internal/platform/cache"
	"github.com/teamdeck/teamdeck/internal/platform/db"
	"github.com/teamdeck/teamdeck/internal/workspace"
	"github.com/teamdeck/teamdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	workspaceClient := workspace.NewClient(cfg.WorkspaceAPIURL, cfg.WorkspaceAPIToken, cfg.WorkspaceDatabaseID)
	accessService := access.NewService(access.NewRepository(pool))
	importerRepo := importer.NewRepository(pool)
	importerService := importer.NewService(workspaceClient, importerRepo, accessService, logger)
	metrics := jobmetrics.NewMetrics(nil)

	syncTask, err := jobs.NewDirectorySyncTask(importer.TriggerScheduled, time.Now().UTC())
	if err != nil {
		logger.Error("build sync task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDirectorySync, Handler: jobs.NewDirectorySyncHandler(importerService, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SyncCronSpec, Task: syncTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
