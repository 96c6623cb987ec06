package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const resetTokenPrefix = "resettoken:"

// ResetTokenTTL bounds how long a verified reset code stays usable.
// The token is minted after OTP verification and consumed by the
// password reset, so the window only needs to cover one form submit.
const ResetTokenTTL = 10 * time.Minute

var (
	// ErrResetTokenNotFound is returned when the token is unknown or already consumed.
	ErrResetTokenNotFound = errors.New("reset token not found")
	// ErrResetTokenExpired is returned when the token has passed its expiry.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// ResetToken authorizes a single password reset after OTP verification.
// Only the token's hash is stored.
type ResetToken struct {
	Email     string    `json:"email"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the token has passed its expiration time.
func (r *ResetToken) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// SaveResetToken stores a reset token record keyed by the token's hash.
func (s *Store) SaveResetToken(_ context.Context, token string, rt *ResetToken) error {
	key := []byte(resetTokenPrefix + hashToken(token))

	if err := s.setWithTTL(key, rt, time.Until(rt.ExpiresAt)); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken retrieves and deletes a reset token in one step, so a
// token authorizes exactly one password reset.
func (s *Store) ConsumeResetToken(_ context.Context, token string) (*ResetToken, error) {
	key := []byte(resetTokenPrefix + hashToken(token))

	var rt ResetToken
	if err := s.get(key, &rt); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}

	if err := s.delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	if rt.IsExpired() {
		return nil, ErrResetTokenExpired
	}

	return &rt, nil
}

// hashToken hashes a token for use as a storage key, so a store compromise
// doesn't leak usable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
