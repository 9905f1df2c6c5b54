package importer

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/platform/httpx"
)

// EnqueuerPort submits a sync task to the background queue.
type EnqueuerPort interface {
	EnqueueDirectorySync(ctx context.Context, trigger string) error
}

// Handler manages sync endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer EnqueuerPort
	mw       access.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, enqueuer EnqueuerPort, mw access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer, mw: mw}
}

// MountRoutes registers sync routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/sync/runs", h.listRuns)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser, h.mw.RequireExecutive)
		r.Post("/sync", h.trigger)
	})
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	if err := h.enqueuer.EnqueueDirectorySync(r.Context(), TriggerManual); err != nil {
		h.logger.Error("enqueue directory sync", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not schedule sync")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"queued": true})
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.service.Runs(r.Context(), limit)
	if err != nil {
		h.logger.Error("list sync runs", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, runs)
}
