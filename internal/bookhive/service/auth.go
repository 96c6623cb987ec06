package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/id"
	"github.com/Sanjay-nithin/campuscore-server/internal/ratelimit"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
)

// resetCodeTTL is how long a password reset OTP stays valid.
const resetCodeTTL = 10 * time.Minute

// minPasswordLength applies to registration and password resets alike.
const minPasswordLength = 8

// AuthService handles registration, login and the password reset flow.
type AuthService struct {
	store        *store.Store
	sessions     *SessionService
	resets       *session.Store
	loginLimiter *ratelimit.KeyedRateLimiter
	resetLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	sessions *SessionService,
	resets *session.Store,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		resets:   resets,
		// One login attempt every 2s per email, small burst for fat fingers.
		loginLimiter: ratelimit.New(0.5, 5),
		// Reset codes are expensive to brute force anyway; keep requests rare.
		resetLimiter: ratelimit.New(1.0/60, 3),
		logger:       logger,
	}
}

// Close releases the rate limiter janitors.
func (s *AuthService) Close() {
	s.loginLimiter.Stop()
	s.resetLimiter.Stop()
}

// RegisterRequest carries the signup form fields.
type RegisterRequest struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	PreferredLanguage string `json:"preferred_language"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login: the profile plus a
// token pair.
type AuthResponse struct {
	User    *UserDetail `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
}

// Register creates a new account and signs it in.
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

	preferredLanguage := strings.TrimSpace(req.PreferredLanguage)
	if preferredLanguage == "" {
		preferredLanguage = domain.DefaultLanguage
	}

	user := &domain.User{
		Email:                email,
		Username:             username,
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		PasswordHash:         passwordHash,
		IsActive:             true,
		PreferredLanguage:    preferredLanguage,
		NotificationsEnabled: true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

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

// ForgotPasswordResponse acknowledges that a reset code went out.
type ForgotPasswordResponse struct {
	Success string `json:"success"`
}

// ForgotPassword issues a fresh OTP for the account. Any outstanding
// code for the email is replaced. There is no mailer wired up, so the
// code lands in the log instead of an inbox.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domainerrors.Validation("Email is required")
	}

	if !s.resetLimiter.Allow(email) {
		return nil, domainerrors.RateLimited("Too many reset requests. Try again later.")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domainerrors.Validation("No account found for this email. Please register first.")
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		return nil, fmt.Errorf("generate reset code: %w", err)
	}

	now := time.Now()
	resetCode := &session.ResetCode{
		Email:     email,
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(resetCodeTTL),
		CreatedAt: now,
	}
	if err := s.resets.SaveResetCode(ctx, resetCode); err != nil {
		return nil, fmt.Errorf("save reset code: %w", err)
	}

	// Stand-in for the mailer: operators read the code off the log.
	s.logger.Info("password reset code issued",
		"user_id", user.ID,
		"email", email,
		"code", code,
	)

	return &ForgotPasswordResponse{Success: "OTP has been sent to your email."}, nil
}

// VerifyOTPRequest carries the emailed code back to us.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse returns the single-use token that authorizes the
// actual password change.
type VerifyOTPResponse struct {
	Success    string `json:"success"`
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// VerifyOTP checks a submitted code and, when it matches, exchanges it
// for a short-lived reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*VerifyOTPResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	otp := strings.TrimSpace(req.OTP)
	if email == "" || otp == "" {
		return nil, domainerrors.Validation("Email and OTP are required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domainerrors.Validation("Invalid credentials")
	}

	code, err := s.resets.GetResetCode(ctx, email)
	switch {
	case errors.Is(err, session.ErrResetCodeNotFound):
		return nil, domainerrors.Validation("No active OTP found. Please request a new one.")
	case errors.Is(err, session.ErrResetCodeExpired):
		return nil, domainerrors.Validation("OTP has expired. Please request a new one.")
	case err != nil:
		return nil, fmt.Errorf("get reset code: %w", err)
	}

	if !auth.VerifyResetCode(code.Code, otp) {
		if err := s.resets.RecordResetAttempt(ctx, email); err != nil {
			if errors.Is(err, session.ErrTooManyResetAttempts) {
				return nil, domainerrors.Validation("Too many incorrect attempts. Please request a new OTP.")
			}
			if !errors.Is(err, session.ErrResetCodeNotFound) && !errors.Is(err, session.ErrResetCodeExpired) {
				return nil, fmt.Errorf("record reset attempt: %w", err)
			}
		}
		return nil, domainerrors.Validation("Invalid OTP")
	}

	token, err := id.Generate("token")
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	now := time.Now()
	resetToken := &session.ResetToken{
		Email:     email,
		UserID:    user.ID,
		ExpiresAt: now.Add(session.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.SaveResetToken(ctx, token, resetToken); err != nil {
		return nil, fmt.Errorf("save reset token: %w", err)
	}

	return &VerifyOTPResponse{
		Success:    "OTP verified successfully",
		Email:      email,
		ResetToken: token,
	}, nil
}

// ResetPasswordRequest carries the verified reset token and the new
// password.
type ResetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordResponse acknowledges a completed reset.
type ResetPasswordResponse struct {
	Success string `json:"success"`
}

// ResetPassword sets a new password for the account the reset token was
// minted for, then signs the user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	token := strings.TrimSpace(req.ResetToken)
	if token == "" || req.NewPassword == "" {
		return nil, domainerrors.Validation("Reset token and new password are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return nil, domainerrors.Validationf("Password must be at least %d characters long", minPasswordLength)
	}

	resetToken, err := s.resets.ConsumeResetToken(ctx, token)
	switch {
	case errors.Is(err, session.ErrResetTokenExpired):
		return nil, domainerrors.Validation("OTP has expired. Please request a new one.")
	case err != nil:
		return nil, domainerrors.Validation("Invalid or expired OTP. Please request a new one.")
	}

	user, err := s.store.GetUser(ctx, resetToken.UserID)
	if err != nil {
		return nil, domainerrors.Validation("Invalid credentials")
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.resets.DeleteResetCode(ctx, resetToken.Email); err != nil {
		s.logger.Warn("delete used reset code", "email", resetToken.Email, "error", err)
	}

	// New password means every existing session is stale.
	if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		s.logger.Warn("revoke sessions after reset", "user_id", user.ID, "error", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)

	return &ResetPasswordResponse{
		Success: "Password has been reset successfully. You can now login with your new password.",
	}, nil
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

	detail, err := userDetail(ctx, s.store, s.logger, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:    detail,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}, nil
}
