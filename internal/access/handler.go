package access

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
	"github.com/teamdeck/teamdeck/internal/shared"
)

// Handler exposes the permissions and view-as endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		mw:        mw,
	}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser)
		r.Get("/permissions", h.effectivePermissions)
		r.Post("/view-as", h.enterViewAs)
		r.Delete("/view-as", h.exitViewAs)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireUser, h.mw.RequireExecutive)
		r.Post("/permissions", h.overrideRole)
	})
}

func (h *Handler) effectivePermissions(w http.ResponseWriter, r *http.Request) {
	assignment, _ := AssignmentFromContext(r.Context())
	sess := shared.SessionFromContext(r.Context())

	resp := struct {
		RoleAssignment
		ViewingAs string `json:"viewing_as,omitempty"`
	}{RoleAssignment: assignment}
	if sess != nil && sess.Impersonation() != "" && assignment.ExternalID == sess.Impersonation() {
		resp.ViewingAs = assignment.Name
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type overrideRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=200"`
	Role  Role   `json:"role" validate:"required,oneof=exec manager employee"`
}

func (h *Handler) overrideRole(w http.ResponseWriter, r *http.Request) {
	var req overrideRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	assignment, err := h.service.OverrideRole(r.Context(), sess.User(), req.Email, req.Name, req.Role)
	if err != nil {
		h.respondError(w, "override role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

type viewAsRequest struct {
	ExternalID string `json:"external_id" validate:"required"`
}

func (h *Handler) enterViewAs(w http.ResponseWriter, r *http.Request) {
	var req viewAsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sess := shared.SessionFromContext(r.Context())
	target, err := h.service.Impersonate(r.Context(), sess.User(), req.ExternalID)
	if err != nil {
		h.respondError(w, "enter view-as", err)
		return
	}
	// Re-entering while already impersonating retargets rather than stacks.
	sess.SetImpersonation(req.ExternalID)
	httpx.JSON(w, http.StatusOK, target)
}

func (h *Handler) exitViewAs(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	sess.ClearImpersonation()

	assignment, err := h.service.Assignment(r.Context(), sess.User())
	if err != nil {
		h.respondError(w, "exit view-as", err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrNotFound) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
