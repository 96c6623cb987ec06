package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/id"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
)

// SessionService manages refresh-token sessions: one session per device,
// rotated on every refresh.
type SessionService struct {
	store    *store.Store
	sessions *session.Store
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewSessionService creates a new session management service.
func NewSessionService(
	store *store.Store,
	sessions *session.Store,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// TokenPair carries a freshly minted access/refresh token pair.
type TokenPair struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds until the access token expires
	SessionID string `json:"session_id"`
}

// CreateSession generates tokens and records a new session for the user.
func (s *SessionService) CreateSession(
	ctx context.Context,
	user *domain.User,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("ses")
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now()
	sess := &session.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        ipAddress,
	}
	applyDeviceInfo(sess, deviceInfo)

	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &TokenPair{
		Access:    accessToken,
		Refresh:   refreshToken,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.AccessTokenDuration().Seconds()),
		SessionID: sessionID,
	}, nil
}

// RefreshSession rotates tokens for an existing session. The presented
// refresh token is invalidated by the rotation.
func (s *SessionService) RefreshSession(
	ctx context.Context,
	refreshToken string,
	deviceInfo auth.DeviceInfo,
	ipAddress string,
) (*TokenPair, error) {
	sess, err := s.sessions.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, domainerrors.TokenExpired("Invalid or expired refresh token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		// The account is gone; the session has nothing left to authorize.
		_ = s.sessions.DeleteSession(ctx, sess.ID)
		return nil, domainerrors.TokenExpired("Invalid or expired refresh token").WithCause(err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sess.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	sess.Touch()
	if deviceInfo.IsValid() {
		applyDeviceInfo(sess, deviceInfo)
	}
	if ipAddress != "" {
		sess.IPAddress = ipAddress
	}

	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return &TokenPair{
		Access:    accessToken,
		Refresh:   newRefreshToken,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.AccessTokenDuration().Seconds()),
		SessionID: sess.ID,
	}, nil
}

// RevokeByRefreshToken ends the session that owns the presented refresh token.
func (s *SessionService) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	sess, err := s.sessions.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
			return domainerrors.Unauthorized("Invalid refresh token")
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.sessions.DeleteSession(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("session revoked", "session_id", sess.ID, "user_id", sess.UserID)
	return nil
}

// RevokeAllForUser ends every session the user has, across all devices.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID int64) error {
	if err := s.sessions.DeleteAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	s.logger.Info("all sessions revoked", "user_id", userID)
	return nil
}

// applyDeviceInfo copies device info fields onto the session record.
func applyDeviceInfo(sess *session.Session, info auth.DeviceInfo) {
	sess.DeviceType = info.DeviceType
	sess.Platform = info.Platform
	sess.ClientName = info.ClientName
	sess.ClientVersion = info.ClientVersion
	sess.BrowserName = info.BrowserName
	sess.BrowserVersion = info.BrowserVersion
}
