package access

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/teamdeck/teamdeck/internal/shared"
)

type permissionsResponse struct {
	RoleAssignment
	ViewingAs string `json:"viewing_as"`
}

func newPermissionsRouter(t *testing.T, sess *shared.Session) chi.Router {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(seededRepo())
	h := NewHandler(logger, svc, Middleware{Service: svc, Logger: logger})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	h.MountRoutes(r)
	return r
}

func signedIn(email string) *shared.Session {
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser(email)
	return sess
}

func do(t *testing.T, router chi.Router, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPermissionsRequireSignIn(t *testing.T) {
	router := newPermissionsRouter(t, &shared.Session{ID: "anon"})

	rec := do(t, router, http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissionsReflectRole(t *testing.T) {
	router := newPermissionsRouter(t, signedIn("marco@co.test"))

	rec := do(t, router, http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp permissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, RoleManager, resp.Role)
	require.ElementsMatch(t, []string{"p-lena", "p-ivo"}, resp.ManagedIDs)
	require.Empty(t, resp.ViewingAs)
}

func TestViewAsFlow(t *testing.T) {
	sess := signedIn("ava@co.test")
	router := newPermissionsRouter(t, sess)

	rec := do(t, router, http.MethodPost, "/view-as", map[string]string{"external_id": "p-lena"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "p-lena", sess.Impersonation())

	var target RoleAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))
	require.Equal(t, RoleEmployee, target.Role)
	require.Equal(t, "p-lena", target.ExternalID)

	// Permissions now answer for the impersonated profile.
	rec = do(t, router, http.MethodGet, "/permissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp permissionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, RoleEmployee, resp.Role)
	require.Equal(t, "Lena Park", resp.ViewingAs)

	// Re-entering retargets instead of stacking.
	rec = do(t, router, http.MethodPost, "/view-as", map[string]string{"external_id": "p-marco"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "p-marco", sess.Impersonation())

	rec = do(t, router, http.MethodDelete, "/view-as", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, sess.Impersonation())

	var own RoleAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))
	require.Equal(t, RoleExecutive, own.Role)
}

func TestViewAsExecutiveOnly(t *testing.T) {
	sess := signedIn("marco@co.test")
	router := newPermissionsRouter(t, sess)

	rec := do(t, router, http.MethodPost, "/view-as", map[string]string{"external_id": "p-lena"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, sess.Impersonation())
}

func TestViewAsUnknownTarget(t *testing.T) {
	router := newPermissionsRouter(t, signedIn("ava@co.test"))

	rec := do(t, router, http.MethodPost, "/view-as", map[string]string{"external_id": "p-missing"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOverrideRoleEndpointGating(t *testing.T) {
	router := newPermissionsRouter(t, signedIn("marco@co.test"))
	payload := map[string]string{"email": "lena@co.test", "role": "manager"}

	rec := do(t, router, http.MethodPost, "/permissions", payload)
	require.Equal(t, http.StatusForbidden, rec.Code)

	router = newPermissionsRouter(t, signedIn("ava@co.test"))
	rec = do(t, router, http.MethodPost, "/permissions", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RoleAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, RoleManager, resp.Role)
	require.Equal(t, "p-lena", resp.ExternalID)
}
