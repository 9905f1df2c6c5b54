package scorecard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamdeck/teamdeck/internal/access"
	"github.com/teamdeck/teamdeck/internal/platform/httpx"
	"github.com/teamdeck/teamdeck/internal/shared"
)

// Handler manages scorecard endpoints.
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

// MountRoutes registers scorecard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/scorecards", h.get)
		r.Post("/scorecards", h.save)
		r.Delete("/scorecards", h.remove)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "employee_id is required")
		return
	}

	viewer, _ := access.AssignmentFromContext(r.Context())
	sc, err := h.service.Get(r.Context(), viewer, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// No scorecard yet is a normal state for a viewable employee.
			httpx.JSON(w, http.StatusOK, map[string]any{"scorecard": nil})
			return
		}
		h.respondError(w, "get scorecard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"scorecard": sc})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var in SaveInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "employee_id and role are required")
		return
	}

	viewer, _ := access.AssignmentFromContext(r.Context())
	sc, err := h.service.Save(r.Context(), viewer, in)
	if err != nil {
		h.respondError(w, "save scorecard", err)
		return
	}
	h.recordAudit(r, "scorecard.save", in.EmployeeID)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "scorecard": sc})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "employee_id is required")
		return
	}

	viewer, _ := access.AssignmentFromContext(r.Context())
	if err := h.service.Delete(r.Context(), viewer, employeeID); err != nil {
		h.respondError(w, "delete scorecard", err)
		return
	}
	h.recordAudit(r, "scorecard.delete", employeeID)
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
		Entity:     "scorecard",
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
