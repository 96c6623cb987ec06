package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

func register(t *testing.T, svc *AuthService, email, username string) *AuthResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		Username:  "reader",
		Email:     "Reader@Example.com",
		Password:  "password123",
		FirstName: "Pat",
	}, auth.DeviceInfo{}, "203.0.113.9")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	require.NotNil(t, resp.User)
	assert.Equal(t, "reader", resp.User.Username)
	assert.Equal(t, "reader@example.com", resp.User.Email)
	assert.Equal(t, "Pat", resp.User.FirstName)
	assert.Equal(t, "English", resp.User.PreferredLanguage)
	assert.False(t, resp.User.IsAdmin)
	assert.Empty(t, resp.User.SavedBooks)

	stored, err := env.store.GetUserByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, stored.IsActive)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "reader",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "Missing required fields")
}

func TestRegister_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "short",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	register(t, svc, "reader@example.com", "reader")

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "other",
		Email:    "reader@example.com",
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestRegister_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	register(t, svc, "reader@example.com", "reader")

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "reader",
		Email:    "other@example.com",
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
	assert.Contains(t, err.Error(), "Username already taken")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)
	ctx := context.Background()

	register(t, svc, "reader@example.com", "reader")

	resp, err := svc.Login(ctx, &LoginRequest{
		Email:    "READER@example.com",
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, "reader", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	register(t, svc, "reader@example.com", "reader")

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong-password",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.Error(t, err)
	// Same answer as a wrong password, so the endpoint leaks nothing.
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)
	ctx := context.Background()

	register(t, svc, "reader@example.com", "reader")

	var rateLimited bool
	for i := 0; i < 10; i++ {
		_, err := svc.Login(ctx, &LoginRequest{
			Email:    "reader@example.com",
			Password: "wrong-password",
		}, auth.DeviceInfo{}, "")
		require.Error(t, err)
		if domainerrors.Is(err, domainerrors.ErrRateLimited) {
			rateLimited = true
			break
		}
	}
	assert.True(t, rateLimited, "expected repeated attempts to hit the limiter")

	// A different account is unaffected.
	register(t, svc, "other@example.com", "other")
	_, err := svc.Login(ctx, &LoginRequest{
		Email:    "other@example.com",
		Password: "password123",
	}, auth.DeviceInfo{}, "")
	require.NoError(t, err)
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)
	ctx := context.Background()

	resp := register(t, svc, "reader@example.com", "reader")

	pair, err := svc.Refresh(ctx, resp.Refresh, auth.DeviceInfo{}, "")
	require.NoError(t, err)
	assert.NotEqual(t, resp.Refresh, pair.Refresh)

	require.NoError(t, svc.Logout(ctx, pair.Refresh))

	_, err = svc.Refresh(ctx, pair.Refresh, auth.DeviceInfo{}, "")
	require.Error(t, err)
}

func TestForgotPassword_EmailRequired(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.ForgotPassword(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email is required")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "No account found for this email. Please register first.")
}

func TestVerifyOTP_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.VerifyOTP(context.Background(), &VerifyOTPRequest{Email: "reader@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email and OTP are required")
}

func TestVerifyOTP_NoActiveCode(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	register(t, svc, "reader@example.com", "reader")

	_, err := svc.VerifyOTP(context.Background(), &VerifyOTPRequest{
		Email: "reader@example.com",
		OTP:   "123456",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No active OTP found. Please request a new one.")
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)
	ctx := context.Background()

	initial := register(t, svc, "reader@example.com", "reader")

	forgot, err := svc.ForgotPassword(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP has been sent to your email.", forgot.Success)

	// No mailer is wired up, so pull the issued code straight from the store.
	code, err := env.sessions.GetResetCode(ctx, "reader@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "reader@example.com", OTP: "000000"})
	if code.Code != "000000" {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid OTP")
	}

	verified, err := svc.VerifyOTP(ctx, &VerifyOTPRequest{Email: "reader@example.com", OTP: code.Code})
	require.NoError(t, err)
	assert.Equal(t, "OTP verified successfully", verified.Success)
	assert.Equal(t, "reader@example.com", verified.Email)
	require.NotEmpty(t, verified.ResetToken)

	reset, err := svc.ResetPassword(ctx, &ResetPasswordRequest{
		ResetToken:  verified.ResetToken,
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password has been reset successfully. You can now login with your new password.", reset.Success)

	// Old sessions are revoked and the old password no longer works.
	_, err = svc.Refresh(ctx, initial.Refresh, auth.DeviceInfo{}, "")
	require.Error(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "reader@example.com", Password: "password123"}, auth.DeviceInfo{}, "")
	require.Error(t, err)

	logged, err := svc.Login(ctx, &LoginRequest{Email: "reader@example.com", Password: "brand-new-pass"}, auth.DeviceInfo{}, "")
	require.NoError(t, err)
	assert.Equal(t, "reader", logged.User.Username)

	// The reset token was single use.
	_, err = svc.ResetPassword(ctx, &ResetPasswordRequest{
		ResetToken:  verified.ResetToken,
		NewPassword: "another-new-pass",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP")
}

func TestResetPassword_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.ResetPassword(context.Background(), &ResetPasswordRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Reset token and new password are required")
}

func TestResetPassword_BadToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService()
	t.Cleanup(svc.Close)

	_, err := svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		ResetToken:  "token-bogus",
		NewPassword: "password123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP. Please request a new one.")
}
