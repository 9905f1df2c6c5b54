package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/teamdeck/teamdeck/internal/platform/httpx"
	"github.com/teamdeck/teamdeck/internal/shared"
)

type assignmentContextKey struct{}

// ContextWithAssignment stores the effective assignment in context.
func ContextWithAssignment(ctx context.Context, a RoleAssignment) context.Context {
	return context.WithValue(ctx, assignmentContextKey{}, a)
}

// AssignmentFromContext extracts the effective assignment placed by the
// middleware. The second return is false when no middleware ran.
func AssignmentFromContext(ctx context.Context) (RoleAssignment, bool) {
	a, ok := ctx.Value(assignmentContextKey{}).(RoleAssignment)
	return a, ok
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireUser ensures the request carries an authenticated session and
// resolves the effective (impersonation-aware) assignment into context.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		assignment, err := m.Service.Effective(r.Context(), sess.User(), sess.Impersonation())
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve effective assignment", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithAssignment(r.Context(), assignment)))
	})
}

// RequireExecutive ensures the effective assignment carries executive rights.
// It must be mounted after RequireUser.
func (m Middleware) RequireExecutive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assignment, ok := AssignmentFromContext(r.Context())
		if !ok || !assignment.IsExecutive() {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "executive role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
