package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/auth"
	"github.com/teamdeck/teamdeck/internal/delegation"
	"github.com/teamdeck/teamdeck/internal/directory"
	"github.com/teamdeck/teamdeck/internal/importer"
	"github.com/teamdeck/teamdeck/internal/observability"
	"github.com/teamdeck/teamdeck/internal/scorecard"
	"github.com/teamdeck/teamdeck/internal/shared"
	"github.com/teamdeck/teamdeck/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	AccessHandler     *access.Handler
	DirectoryHandler  *directory.Handler
	DelegationHandler *delegation.Handler
	ScorecardHandler  *scorecard.Handler
	ImporterHandler   *importer.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with teamdeck defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(r chi.Router) {
		params.AccessHandler.MountRoutes(r)
		params.DirectoryHandler.MountRoutes(r)
		params.DelegationHandler.MountRoutes(r)
		params.ScorecardHandler.MountRoutes(r)
		if params.ImporterHandler != nil {
			params.ImporterHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
