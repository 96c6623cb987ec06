package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/importer"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
)

// testServer runs the full HTTP stack against real stores in temp
// directories. Tests drive it through ServeHTTP the way a client would,
// so middleware, routing, and error rendering are all in play.
type testServer struct {
	*Server
	st     *store.Store
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.New(filepath.Join(t.TempDir(), "sessions"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	coverStorage, err := covers.NewStorage(t.TempDir())
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, sessions, tokens, logger)
	authService := service.NewAuthService(st, sessionService, sessions, logger)
	t.Cleanup(authService.Close)

	imp := importer.New(st, index, logger)
	adminService := service.NewAdminService(st, index, imp, covers.NewProcessor(coverStorage, logger), coverStorage, logger)

	server := NewServer(
		st,
		index,
		authService,
		service.NewProfileService(st, logger),
		service.NewLibraryService(st, logger),
		service.NewCatalogService(st, index, logger),
		adminService,
		tokens,
		coverStorage,
		[]string{"*"},
		logger,
	)

	return &testServer{Server: server, st: st, tokens: tokens}
}

// do sends one request through the full middleware stack.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func (ts *testServer) seedUser(t *testing.T, email, username string) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	u := &domain.User{
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		IsActive:          true,
		PreferredLanguage: domain.DefaultLanguage,
	}
	require.NoError(t, ts.st.CreateUser(context.Background(), u))
	return u
}

func (ts *testServer) seedBook(t *testing.T, title, author, isbn string, genres []string, rating float64) *domain.Book {
	t.Helper()

	b := &domain.Book{
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Genres:   genres,
		Rating:   rating,
		Language: domain.DefaultLanguage,
	}
	require.NoError(t, ts.st.CreateBook(context.Background(), b))
	return b
}

func (ts *testServer) token(t *testing.T, u *domain.User) string {
	t.Helper()

	tok, err := ts.tokens.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	require.NoError(t, err)
	return tok
}

// errorBody is the wire shape every failed request renders.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		User    *service.UserDetail `json:"user"`
		Access  string              `json:"access"`
		Refresh string              `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "reader@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Access)
	assert.NotEmpty(t, registered.Refresh)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The issued token must work against a protected route.
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	w = ts.do(t, http.MethodGet, "/api/users/me", registered.Access, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "lonely",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeError(t, w)
	assert.NotEmpty(t, body.Error)
	assert.NotNil(t, body.Details)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.seedUser(t, "reader@example.com", "reader")

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "reader@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeError(t, w).Error)
}

func TestProtectedRoute_NoToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/books/saved", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeError(t, w).Error)
}

func TestProtectedRoute_GarbageToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/books/saved", "v4.local.not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeError(t, w).Error)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "reader@example.com", "reader")

	w := ts.do(t, http.MethodGet, "/api/books/9999", ts.token(t, user), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", decodeError(t, w).Error)
}

func TestAdminRoute_ForbiddenForRegularUser(t *testing.T) {
	ts := newTestServer(t)
	user := ts.seedUser(t, "reader@example.com", "reader")

	w := ts.do(t, http.MethodGet, "/api/admin/dashboard", ts.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decodeError(t, w).Error)
}

func TestAdminRoute_AllowedForAdmin(t *testing.T) {
	ts := newTestServer(t)

	admin := ts.seedUser(t, "admin@example.com", "admin")
	admin.IsAdmin = true
	require.NoError(t, ts.st.UpdateUser(context.Background(), admin))

	w := ts.do(t, http.MethodGet, "/api/admin/dashboard", ts.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
