package delegation

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

// Handler manages delegation endpoints.
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

// MountRoutes registers delegation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/delegations", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser, h.mw.RequireExecutive)
		r.Post("/delegations", h.create)
		r.Delete("/delegations", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	delegations, err := h.service.List(r.Context(), r.URL.Query().Get("manager_id"))
	if err != nil {
		h.logger.Error("list delegations", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if delegations == nil {
		delegations = []Delegation{}
	}
	httpx.JSON(w, http.StatusOK, delegations)
}

type delegationRequest struct {
	ManagerID  string `json:"manager_id" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req delegationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "manager_id and employee_id are required")
		return
	}

	actor, _ := access.AssignmentFromContext(r.Context())
	d, err := h.service.Assign(r.Context(), actor, req.ManagerID, req.EmployeeID)
	if err != nil {
		h.respondError(w, "create delegation", err)
		return
	}
	h.recordAudit(r, "delegation.create", req.ManagerID+":"+req.EmployeeID)
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	var req delegationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "manager_id and employee_id are required")
		return
	}

	actor, _ := access.AssignmentFromContext(r.Context())
	if err := h.service.Revoke(r.Context(), actor, req.ManagerID, req.EmployeeID); err != nil {
		h.respondError(w, "delete delegation", err)
		return
	}
	h.recordAudit(r, "delegation.delete", req.ManagerID+":"+req.EmployeeID)
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
		Entity:     "delegation",
		EntityID:   entityID,
	}); err != nil {
		h.logger.Warn("record audit", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	known := errors.Is(err, ErrDuplicate) || errors.Is(err, ErrSelfAssignment) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, access.ErrForbidden)
	if !known {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
