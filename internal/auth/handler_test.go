package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamdeck/teamdeck/internal/shared"
	_ "github.com/teamdeck/teamdeck/internal/testing/guard"
)

type stubRepo struct {
	users    map[string]*User
	sessions map[string]string
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) CreateSession(ctx context.Context, id, email string, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = email
	return nil
}

func (r *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

// commitWriter flushes the session to the store before the first byte of the
// response, the same ordering the application middleware guarantees.
type commitWriter struct {
	http.ResponseWriter
	r         *http.Request
	manager   *shared.SessionManager
	sess      *shared.Session
	committed bool
}

func (w *commitWriter) WriteHeader(code int) {
	if !w.committed {
		w.committed = true
		_ = w.manager.Commit(w.r.Context(), w.ResponseWriter, w.r, w.sess)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func sessionMiddleware(manager *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(r.Context(), r)
			if err != nil {
				http.Error(w, "session load", http.StatusInternalServerError)
				return
			}
			r = r.WithContext(shared.ContextWithSession(r.Context(), sess))
			next.ServeHTTP(&commitWriter{ResponseWriter: w, r: r, manager: manager, sess: sess}, r)
		})
	}
}

func newTestRouter(t *testing.T) (chi.Router, *stubRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret1"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{
		users: map[string]*User{
			"ava@co.test":  {ID: 1, Email: "ava@co.test", PasswordHash: string(hash), IsActive: true},
			"gone@co.test": {ID: 2, Email: "gone@co.test", PasswordHash: string(hash), IsActive: false},
		},
		sessions: make(map[string]string),
	}

	manager := shared.NewSessionManager(client, "teamdeck_session", "test-secret", time.Hour, false)
	handler := NewHandler(slog.New(slog.DiscardHandler), NewService(repo), manager, shared.NewCSRFManager("test-secret"))

	r := chi.NewRouter()
	r.Use(sessionMiddleware(manager))
	handler.MountRoutes(r)
	return r, repo, mr
}

func doLogin(t *testing.T, router chi.Router, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "teamdeck_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoginSuccess(t *testing.T) {
	router, repo, mr := newTestRouter(t)

	rec := doLogin(t, router, "ava@co.test", "supersecret1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ava@co.test", resp.Email)
	require.NotEmpty(t, resp.CSRFToken)

	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.True(t, mr.Exists("session:"+cookie.Value))
	require.Equal(t, "ava@co.test", repo.sessions[cookie.Value])
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doLogin(t, router, "ava@co.test", "wrongpassword")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doLogin(t, router, "nobody@co.test", "supersecret1")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Deactivated accounts fail the same way as bad passwords.
	rec = doLogin(t, router, "gone@co.test", "supersecret1")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doLogin(t, router, "not-an-email", "supersecret1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doLogin(t, router, "ava@co.test", "short")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionRehydrate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	cookie := sessionCookie(t, doLogin(t, router, "ava@co.test", "supersecret1"))

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ava@co.test", resp.Email)
	require.NotEmpty(t, resp.CSRFToken)
}

func TestSessionRequiresLogin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	router, repo, mr := newTestRouter(t)

	cookie := sessionCookie(t, doLogin(t, router, "ava@co.test", "supersecret1"))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.False(t, mr.Exists("session:"+cookie.Value))
	require.NotContains(t, repo.sessions, cookie.Value)

	// The old cookie no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
