package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const resetCodePrefix = "reset:"

// maxResetAttempts is the number of wrong codes allowed before the
// reset code is invalidated and the user has to request a new one.
const maxResetAttempts = 5

var (
	// ErrResetCodeNotFound is returned when no reset code exists for the email.
	ErrResetCodeNotFound = errors.New("reset code not found")
	// ErrResetCodeExpired is returned when the reset code has passed its expiry.
	ErrResetCodeExpired = errors.New("reset code expired")
	// ErrTooManyResetAttempts is returned after repeated wrong codes.
	ErrTooManyResetAttempts = errors.New("too many reset attempts")
)

// ResetCode is an emailed one-time code for password reset.
// Keyed by normalized email, so requesting a new code replaces any
// outstanding one.
type ResetCode struct {
	Email     string    `json:"email"`
	UserID    int64     `json:"user_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Attempts  int       `json:"attempts"`
}

// IsExpired checks if the code has passed its expiration time.
func (r *ResetCode) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// SaveResetCode stores a reset code, replacing any existing one for
// the same email. The entry expires with the code.
func (s *Store) SaveResetCode(_ context.Context, code *ResetCode) error {
	ttl := time.Until(code.ExpiresAt)
	key := []byte(resetCodePrefix + normalizeEmail(code.Email))

	if err := s.setWithTTL(key, code, ttl); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}
	return nil
}

// GetResetCode retrieves the outstanding reset code for an email.
func (s *Store) GetResetCode(_ context.Context, email string) (*ResetCode, error) {
	key := []byte(resetCodePrefix + normalizeEmail(email))

	var code ResetCode
	if err := s.get(key, &code); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrResetCodeNotFound
		}
		return nil, fmt.Errorf("get reset code: %w", err)
	}

	if code.IsExpired() {
		return nil, ErrResetCodeExpired
	}

	return &code, nil
}

// RecordResetAttempt bumps the failed-attempt counter for an email's
// reset code. Once the limit is reached the code is deleted and
// ErrTooManyResetAttempts is returned.
func (s *Store) RecordResetAttempt(ctx context.Context, email string) error {
	code, err := s.GetResetCode(ctx, email)
	if err != nil {
		return err
	}

	code.Attempts++
	if code.Attempts >= maxResetAttempts {
		if err := s.DeleteResetCode(ctx, email); err != nil {
			return err
		}
		return ErrTooManyResetAttempts
	}

	key := []byte(resetCodePrefix + normalizeEmail(email))
	if err := s.setWithTTL(key, code, time.Until(code.ExpiresAt)); err != nil {
		return fmt.Errorf("update reset code: %w", err)
	}
	return nil
}

// DeleteResetCode removes the reset code for an email. Idempotent.
func (s *Store) DeleteResetCode(_ context.Context, email string) error {
	key := []byte(resetCodePrefix + normalizeEmail(email))
	if err := s.delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete reset code: %w", err)
	}
	return nil
}
