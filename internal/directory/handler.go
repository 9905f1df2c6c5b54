package directory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/platform/httpx"
	"github.com/teamdeck/teamdeck/internal/shared"
)

// Handler manages employee directory endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	audit     *shared.AuditLogger
	validator *validator.Validate
	mw        access.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, mw access.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		audit:     audit,
		validator: validator.New(),
		mw:        mw,
	}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/employees", h.list)
		r.Get("/employees/stats", h.stats)
		r.Get("/employees/{externalID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser, h.mw.RequireExecutive)
		r.Put("/employees/{externalID}/salary", h.updateSalary)
		r.Delete("/employees/{externalID}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	viewer, _ := access.AssignmentFromContext(r.Context())
	profiles, err := h.service.List(r.Context(), viewer)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	// The dashboard loads the whole directory unless a page is requested.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = len(profiles)
	}
	pg := shared.NewPagination(page, perPage, len(profiles))

	start := (pg.Page - 1) * pg.PerPage
	if start > len(profiles) {
		start = len(profiles)
	}
	end := start + pg.PerPage
	if end > len(profiles) {
		end = len(profiles)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"profiles":   profiles[start:end],
		"pagination": pg,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	viewer, _ := access.AssignmentFromContext(r.Context())
	profile, err := h.service.Get(r.Context(), viewer, chi.URLParam(r, "externalID"))
	if err != nil {
		h.respondError(w, "get employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("employee stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

type updateSalaryRequest struct {
	BaseSalary float64 `json:"base_salary" validate:"gte=0"`
}

func (h *Handler) updateSalary(w http.ResponseWriter, r *http.Request) {
	var req updateSalaryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "salary must be a positive number")
		return
	}

	viewer, _ := access.AssignmentFromContext(r.Context())
	externalID := chi.URLParam(r, "externalID")
	profile, err := h.service.UpdateSalary(r.Context(), viewer, externalID, req.BaseSalary)
	if err != nil {
		h.respondError(w, "update salary", err)
		return
	}
	h.recordAudit(r, "salary.update", externalID)
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	viewer, _ := access.AssignmentFromContext(r.Context())
	externalID := chi.URLParam(r, "externalID")
	if err := h.service.Delete(r.Context(), viewer, externalID); err != nil {
		h.respondError(w, "delete employee", err)
		return
	}
	h.recordAudit(r, "employee.delete", externalID)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) recordAudit(r *http.Request, action, entityID string) {
	if h.audit == nil {
		return
	}
	sess := shared.SessionFromContext(r.Context())
	actor := ""
	if sess != nil {
		actor = sess.User()
	}
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorEmail: actor,
		Action:     action,
		Entity:     "profile",
		EntityID:   entityID,
	}); err != nil {
		h.logger.Warn("record audit", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, access.ErrForbidden) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
