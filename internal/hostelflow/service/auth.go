package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/ratelimit"
)

// minPasswordLength applies to resident registration.
const minPasswordLength = 8

// AuthService handles resident registration and login. Provider and
// admin accounts are created through the admin surface instead.
type AuthService struct {
	store        *store.Store
	sessions     *SessionService
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	sessions *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		// One login attempt every 2s per email, small burst for fat fingers.
		loginLimiter: ratelimit.New(0.5, 5),
		logger:       logger,
	}
}

// Close releases the rate limiter janitor.
func (s *AuthService) Close() {
	s.loginLimiter.Stop()
}

// RegisterRequest carries the resident signup form fields.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RoomNumber string `json:"room_number"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login: the account plus a
// token pair.
type AuthResponse struct {
	User    *domain.User `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

// Register creates a new resident account and signs it in.
func (s *AuthService) Register(
	ctx context.Context,
	req *RegisterRequest,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, domainerrors.Validation("Missing required fields")
	}
	if len(req.Password) < minPasswordLength {
		return nil, domainerrors.Validationf("Password must be at least %d characters long", minPasswordLength)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, domainerrors.AlreadyExists("Email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, domainerrors.AlreadyExists("Username already taken")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		RoomNumber:   strings.TrimSpace(req.RoomNumber),
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("resident registered", "user_id", user.ID, "email", user.Email)

	return s.signIn(ctx, user, deviceInfo, ipAddress)
}

// Login verifies credentials and opens a session. Attempts are rate
// limited per email so credential stuffing burns out quickly.
func (s *AuthService) Login(
	ctx context.Context,
	req *LoginRequest,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domainerrors.InvalidCredentials("Invalid credentials")
	}

	if !s.loginLimiter.Allow(email) {
		return nil, domainerrors.RateLimited("Too many login attempts. Try again later.")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		// Indistinguishable from a wrong password on purpose.
		return nil, domainerrors.InvalidCredentials("Invalid credentials")
	}
	if !user.IsActive {
		return nil, domainerrors.InvalidCredentials("Invalid credentials")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !ok {
		return nil, domainerrors.InvalidCredentials("Invalid credentials")
	}

	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)

	return s.signIn(ctx, user, deviceInfo, ipAddress)
}

// Refresh rotates a refresh token into a new token pair.
func (s *AuthService) Refresh(
	ctx context.Context,
	refreshToken string,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*TokenPair, error) {
	return s.sessions.RefreshSession(ctx, refreshToken, deviceInfo, ipAddress)
}

// Logout revokes the session owning the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.RevokeByRefreshToken(ctx, refreshToken)
}

// signIn opens a session and assembles the auth response.
func (s *AuthService) signIn(
	ctx context.Context,
	user *domain.User,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*AuthResponse, error) {
	pair, err := s.sessions.CreateSession(ctx, user, deviceInfo, ipAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:    user,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}, nil
}
