package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/app"
	"github.com/teamdeck/teamdeck/internal/auth"
	"github.com/teamdeck/teamdeck/internal/delegation"
	"github.com/teamdeck/teamdeck/internal/directory"
	"github.com/teamdeck/teamdeck/internal/importer"
	"github.com/teamdeck/teamdeck/internal/observability"
	"github.com/teamdeck/teamdeck/internal/platform/cache"
	"github.com/teamdeck/teamdeck/internal/platform/db"
	"github.com/teamdeck/teamdeck/internal/scorecard"
	"github.com/teamdeck/teamdeck/internal/shared"
	"github.com/teamdeck/teamdeck/internal/workspace"
	"github.com/teamdeck/teamdeck/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	sessionManager := shared.NewSessionManager(redisClient, "teamdeck_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	accessRepo := access.NewRepository(pool)
	accessService := access.NewService(accessRepo)
	accessMiddleware := access.Middleware{Service: accessService, Logger: logger}
	accessHandler := access.NewHandler(logger, accessService, accessMiddleware)

	directoryRepo := directory.NewRepository(pool)
	directoryService := directory.NewService(directoryRepo)
	directoryHandler := directory.NewHandler(logger, directoryService, auditLogger, accessMiddleware)

	delegationRepo := delegation.NewRepository(pool)
	delegationService := delegation.NewService(delegationRepo, accessService)
	delegationHandler := delegation.NewHandler(logger, delegationService, auditLogger, accessMiddleware)

	scorecardRepo := scorecard.NewRepository(pool)
	scorecardService := scorecard.NewService(scorecardRepo, directoryRepo)
	scorecardHandler := scorecard.NewHandler(logger, scorecardService, auditLogger, accessMiddleware)

	workspaceClient := workspace.NewClient(cfg.WorkspaceAPIURL, cfg.WorkspaceAPIToken, cfg.WorkspaceDatabaseID)
	importerRepo := importer.NewRepository(pool)
	importerService := importer.NewService(workspaceClient, importerRepo, accessService, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	importerHandler := importer.NewHandler(logger, importerService, jobClient, accessMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		AccessHandler:     accessHandler,
		DirectoryHandler:  directoryHandler,
		DelegationHandler: delegationHandler,
		ScorecardHandler:  scorecardHandler,
		ImporterHandler:   importerHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
