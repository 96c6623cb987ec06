package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
	"github.com/Sanjay-nithin/campuscore-server/internal/validation"
)

// testEnv wires real stores against temp directories: sqlite for the
// booking data, badger for sessions.
type testEnv struct {
	store    *store.Store
	sessions *session.Store
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

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

	return &testEnv{
		store:    st,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

func (e *testEnv) sessionService() *SessionService {
	return NewSessionService(e.store, e.sessions, e.tokens, e.logger)
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.store, e.sessionService(), e.logger)
}

func (e *testEnv) bookingService() *BookingService {
	return NewBookingService(e.store, validation.New(), e.logger)
}

func (e *testEnv) providerService() *ProviderService {
	return NewProviderService(e.store, e.logger)
}

func (e *testEnv) notificationService() *NotificationService {
	return NewNotificationService(e.store, e.logger)
}

func (e *testEnv) adminService() *AdminService {
	return NewAdminService(e.store, e.sessionService(), e.logger)
}

func (e *testEnv) seedUser(t *testing.T, email, username string) *domain.User {
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
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) seedService(t *testing.T, name string) *domain.Service {
	t.Helper()

	svc := &domain.Service{
		Name:        name,
		Description: domain.DefaultServiceDescription(name),
		PriceCents:  domain.DefaultPriceCents,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, e.store.CreateService(context.Background(), svc))
	return svc
}

// seedProvider creates a provider account with one offering for the
// service, returning the account, profile, and offering.
func (e *testEnv) seedProvider(t *testing.T, email, username string, serviceID int64) (*domain.User, *domain.Provider, *domain.Offering) {
	t.Helper()
	ctx := context.Background()

	u := e.seedUser(t, email, username)
	u.IsProvider = true
	u.RoomNumber = ""
	require.NoError(t, e.store.UpdateUser(ctx, u))

	p := &domain.Provider{UserID: u.ID, Phone: "555-0101", CreatedAt: time.Now()}
	require.NoError(t, e.store.CreateProvider(ctx, p))

	o := &domain.Offering{ProviderID: p.ID, ServiceID: serviceID, Available: true}
	require.NoError(t, e.store.CreateOffering(ctx, o))
	return u, p, o
}

func (e *testEnv) seedBooking(t *testing.T, userID, offeringID int64, date, slot string) *domain.Booking {
	t.Helper()

	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	now := time.Now()
	b := &domain.Booking{
		UserID:     userID,
		OfferingID: offeringID,
		Date:       day,
		TimeSlot:   slot,
		Status:     domain.StatusBooked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, e.store.CreateBooking(context.Background(), b))
	return b
}
