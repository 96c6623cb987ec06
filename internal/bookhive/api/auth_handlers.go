package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Register new user",
		Description:   "Creates a new reader account and signs it in. Email and username must be unique.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens. Rate limited per email.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a rotated token pair",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session owning the presented refresh token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgotPassword",
		Method:      http.MethodPost,
		Path:        "/api/auth/forgot-password",
		Summary:     "Request password reset",
		Description: "Issues a one-time password reset code for the account. Rate limited per email.",
		Tags:        []string{"Authentication"},
	}, s.handleForgotPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "verifyOTP",
		Method:      http.MethodPost,
		Path:        "/api/auth/verify-otp",
		Summary:     "Verify password reset code",
		Description: "Verifies the emailed OTP and returns a short-lived reset token",
		Tags:        []string{"Authentication"},
	}, s.handleVerifyOTP)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        "/api/auth/reset-password",
		Summary:     "Reset password",
		Description: "Sets a new password using the reset token from OTP verification and revokes all sessions",
		Tags:        []string{"Authentication"},
	}, s.handleResetPassword)
}

// === DTOs ===

// DeviceInfo contains optional client metadata for session tracking.
type DeviceInfo struct {
	DeviceType      string `json:"device_type,omitempty" validate:"omitempty,max=50" doc:"Device type (mobile, tablet, desktop, web, tv)"`
	Platform        string `json:"platform,omitempty" validate:"omitempty,max=50" doc:"Platform (iOS, Android, Windows, macOS, Linux, Web)"`
	PlatformVersion string `json:"platform_version,omitempty" validate:"omitempty,max=50" doc:"Platform version (17.2, 14.0, etc.)"`
	ClientName      string `json:"client_name,omitempty" validate:"omitempty,max=100" doc:"Client application name"`
	ClientVersion   string `json:"client_version,omitempty" validate:"omitempty,max=50" doc:"Client version (1.0.0)"`
	BrowserName     string `json:"browser_name,omitempty" validate:"omitempty,max=100" doc:"Browser name (for web clients)"`
	BrowserVersion  string `json:"browser_version,omitempty" validate:"omitempty,max=50" doc:"Browser version (for web clients)"`
}

func (d DeviceInfo) toAuth() auth.DeviceInfo {
	return auth.DeviceInfo{
		DeviceType:      d.DeviceType,
		Platform:        d.Platform,
		PlatformVersion: d.PlatformVersion,
		ClientName:      d.ClientName,
		ClientVersion:   d.ClientVersion,
		BrowserName:     d.BrowserName,
		BrowserVersion:  d.BrowserVersion,
	}
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username          string     `json:"username" validate:"required,min=1,max=150" doc:"Unique username"`
	Email             string     `json:"email" validate:"required,email,max=254" doc:"User email address"`
	Password          string     `json:"password" validate:"required,min=8,max=1024" doc:"User password"`
	FirstName         string     `json:"first_name,omitempty" validate:"omitempty,max=100" doc:"User first name"`
	LastName          string     `json:"last_name,omitempty" validate:"omitempty,max=100" doc:"User last name"`
	PreferredLanguage string     `json:"preferred_language,omitempty" validate:"omitempty,max=50" doc:"Preferred book language (default English)"`
	DeviceInfo        DeviceInfo `json:"device_info,omitempty" doc:"Client device info"`
}

// RegisterInput wraps the register request with headers for Huma.
type RegisterInput struct {
	Body          RegisterRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// AuthOutput wraps the signed-in profile with its token pair.
type AuthOutput struct {
	Body *service.AuthResponse
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email      string     `json:"email" validate:"required,email,max=254" doc:"User email"`
	Password   string     `json:"password" validate:"required,max=1024" doc:"User password"`
	DeviceInfo DeviceInfo `json:"device_info,omitempty" doc:"Client device info"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body          LoginRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	Refresh    string     `json:"refresh" validate:"required" doc:"Refresh token"`
	DeviceInfo DeviceInfo `json:"device_info,omitempty" doc:"Updated device info"`
}

// RefreshInput wraps the refresh request with headers for Huma.
type RefreshInput struct {
	Body          RefreshRequest
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// TokenPairOutput wraps a rotated token pair.
type TokenPairOutput struct {
	Body *service.TokenPair
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	Refresh string `json:"refresh" validate:"required" doc:"Refresh token of the session to revoke"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body LogoutRequest
}

// MessageOutput wraps a plain acknowledgement message.
type MessageOutput struct {
	Body service.MessageResponse
}

// ForgotPasswordRequest is the request body for requesting a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
}

// ForgotPasswordInput wraps the forgot-password request for Huma.
type ForgotPasswordInput struct {
	Body ForgotPasswordRequest
}

// ForgotPasswordOutput wraps the reset code acknowledgement.
type ForgotPasswordOutput struct {
	Body *service.ForgotPasswordResponse
}

// VerifyOTPInput wraps the OTP verification request for Huma.
type VerifyOTPInput struct {
	Body service.VerifyOTPRequest
}

// VerifyOTPOutput wraps the reset token issued for a valid OTP.
type VerifyOTPOutput struct {
	Body *service.VerifyOTPResponse
}

// ResetPasswordInput wraps the password reset request for Huma.
type ResetPasswordInput struct {
	Body service.ResetPasswordRequest
}

// ResetPasswordOutput wraps the password reset acknowledgement.
type ResetPasswordOutput struct {
	Body *service.ResetPasswordResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.auth.Register(ctx, &service.RegisterRequest{
		Username:          input.Body.Username,
		Email:             input.Body.Email,
		Password:          input.Body.Password,
		FirstName:         input.Body.FirstName,
		LastName:          input.Body.LastName,
		PreferredLanguage: input.Body.PreferredLanguage,
	}, input.Body.DeviceInfo.toAuth(), extractIP(input.XForwardedFor, input.XRealIP))
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.auth.Login(ctx, &service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	}, input.Body.DeviceInfo.toAuth(), extractIP(input.XForwardedFor, input.XRealIP))
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*TokenPairOutput, error) {
	pair, err := s.auth.Refresh(ctx, input.Body.Refresh, input.Body.DeviceInfo.toAuth(),
		extractIP(input.XForwardedFor, input.XRealIP))
	if err != nil {
		return nil, err
	}
	return &TokenPairOutput{Body: pair}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.auth.Logout(ctx, input.Body.Refresh); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: service.MessageResponse{Message: "Logged out successfully"}}, nil
}

func (s *Server) handleForgotPassword(ctx context.Context, input *ForgotPasswordInput) (*ForgotPasswordOutput, error) {
	resp, err := s.auth.ForgotPassword(ctx, input.Body.Email)
	if err != nil {
		return nil, err
	}
	return &ForgotPasswordOutput{Body: resp}, nil
}

func (s *Server) handleVerifyOTP(ctx context.Context, input *VerifyOTPInput) (*VerifyOTPOutput, error) {
	resp, err := s.auth.VerifyOTP(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &VerifyOTPOutput{Body: resp}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*ResetPasswordOutput, error) {
	resp, err := s.auth.ResetPassword(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &ResetPasswordOutput{Body: resp}, nil
}
