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
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
	"github.com/Sanjay-nithin/campuscore-server/internal/validation"
)

// testServer runs the full HTTP stack against real stores in temp
// directories. Tests drive it through ServeHTTP the way a client would.
type testServer struct {
	*Server
	st     *store.Store
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(t.TempDir(), "hostel.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.New(filepath.Join(t.TempDir(), "sessions"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, sessions, tokens, logger)
	authService := service.NewAuthService(st, sessionService, logger)
	t.Cleanup(authService.Close)

	server := NewServer(
		st,
		authService,
		service.NewBookingService(st, validation.New(), logger),
		service.NewProviderService(st, logger),
		service.NewNotificationService(st, logger),
		service.NewAdminService(st, sessionService, logger),
		tokens,
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
		Email:        email,
		Username:     username,
		RoomNumber:   "B-204",
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, ts.st.CreateUser(context.Background(), u))
	return u
}

func (ts *testServer) seedService(t *testing.T, name string) *domain.Service {
	t.Helper()

	svc := &domain.Service{
		Name:        name,
		Description: domain.DefaultServiceDescription(name),
		PriceCents:  domain.DefaultPriceCents,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, ts.st.CreateService(context.Background(), svc))
	return svc
}

// seedProvider creates a provider account with one offering for the
// service.
func (ts *testServer) seedProvider(t *testing.T, email, username string, serviceID int64) (*domain.User, *domain.Offering) {
	t.Helper()
	ctx := context.Background()

	u := ts.seedUser(t, email, username)
	u.IsProvider = true
	u.RoomNumber = ""
	require.NoError(t, ts.st.UpdateUser(ctx, u))

	p := &domain.Provider{UserID: u.ID, Phone: "555-0101", CreatedAt: time.Now()}
	require.NoError(t, ts.st.CreateProvider(ctx, p))

	o := &domain.Offering{ProviderID: p.ID, ServiceID: serviceID, Available: true}
	require.NoError(t, ts.st.CreateOffering(ctx, o))
	return u, o
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
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username":    "resident",
		"email":       "resident@example.com",
		"password":    "password123",
		"room_number": "A-101",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signed struct {
		User    *domain.User `json:"user"`
		Access  string       `json:"access"`
		Refresh string       `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signed))
	assert.Equal(t, "resident@example.com", signed.User.Email)
	assert.NotEmpty(t, signed.Access)
	assert.NotEmpty(t, signed.Refresh)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "resident@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signed))
	w = ts.do(t, http.MethodGet, "/api/auth/profile", signed.Access, nil)
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
	ts.seedUser(t, "resident@example.com", "resident")

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "resident@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeError(t, w).Error)
}

func TestProtectedRoute_NoToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/services", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeError(t, w).Error)
}

func TestProviderRoute_ForbiddenForResident(t *testing.T) {
	ts := newTestServer(t)
	resident := ts.seedUser(t, "resident@example.com", "resident")

	w := ts.do(t, http.MethodGet, "/api/provider/bookings", ts.token(t, resident), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User is not a service provider", decodeError(t, w).Error)
}

func TestAdminRoute_ForbiddenForResident(t *testing.T) {
	ts := newTestServer(t)
	resident := ts.seedUser(t, "resident@example.com", "resident")

	w := ts.do(t, http.MethodGet, "/api/admin/bookings", ts.token(t, resident), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decodeError(t, w).Error)
}

func TestAdminRoute_AllowedForAdmin(t *testing.T) {
	ts := newTestServer(t)

	admin := ts.seedUser(t, "admin@example.com", "admin")
	admin.IsAdmin = true
	require.NoError(t, ts.st.UpdateUser(context.Background(), admin))

	w := ts.do(t, http.MethodGet, "/api/admin/users", ts.token(t, admin), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
