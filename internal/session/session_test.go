package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "campuscore-session-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "sessions")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		_ = store.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func testSession(id string, userID int64) *Session {
	return &Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: "hash_" + id,
		ExpiresAt:        time.Now().Add(24 * time.Hour),
		CreatedAt:        time.Now(),
		LastSeenAt:       time.Now(),
		DeviceType:       "web",
		Platform:         "Web",
		ClientName:       "CampusCore Web",
		ClientVersion:    "1.0.0",
	}
}

func TestCreateSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Verify session can be retrieved
	retrieved, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, session.RefreshTokenHash, retrieved.RefreshTokenHash)
	assert.Equal(t, session.DeviceType, retrieved.DeviceType)
}

func TestCreateSession_DuplicateID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)

	// First creation succeeds
	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Second creation with same ID fails
	session2 := testSession("ses-test123", 42)
	session2.RefreshTokenHash = "different_token"

	err = store.CreateSession(ctx, session2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateSession_AlreadyExpired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)
	session.ExpiresAt = time.Now().Add(-1 * time.Hour)

	err := store.CreateSession(ctx, session)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expires in the past")
}

func TestGetSession_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetSession(ctx, "ses-nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession_Expired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)
	session.ExpiresAt = time.Now().Add(50 * time.Millisecond)

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	// Getting expired session should return an error, whether Badger's
	// TTL has reclaimed the entry yet or not.
	_, err = store.GetSession(ctx, session.ID)
	assert.Error(t, err)
}

func TestGetSessionByRefreshToken_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)
	session.RefreshTokenHash = "unique_token_hash_123"

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Retrieve by token
	retrieved, err := store.GetSessionByRefreshToken(ctx, "unique_token_hash_123")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.RefreshTokenHash, retrieved.RefreshTokenHash)
}

func TestGetSessionByRefreshToken_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetSessionByRefreshToken(ctx, "nonexistent_token")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSession_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)
	session.IPAddress = "192.168.1.1"

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Wait a moment
	time.Sleep(10 * time.Millisecond)

	// Update session
	session.IPAddress = "192.168.1.2"
	session.Touch()
	err = store.UpdateSession(ctx, session)
	require.NoError(t, err)

	// Verify update
	updated, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.2", updated.IPAddress)
	assert.True(t, updated.LastSeenAt.After(session.CreatedAt))
}

func TestUpdateSession_TokenRotation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)
	session.RefreshTokenHash = "old_token_hash"

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Rotate token
	session.RefreshTokenHash = "new_token_hash"
	err = store.UpdateSession(ctx, session)
	require.NoError(t, err)

	// Old token should not work
	_, err = store.GetSessionByRefreshToken(ctx, "old_token_hash")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// New token should work
	retrieved, err := store.GetSessionByRefreshToken(ctx, "new_token_hash")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
}

func TestDeleteSession_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	session := testSession("ses-test123", 42)

	err := store.CreateSession(ctx, session)
	require.NoError(t, err)

	// Delete session
	err = store.DeleteSession(ctx, session.ID)
	assert.NoError(t, err)

	// Session should not be found
	_, err = store.GetSession(ctx, session.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Token should not work
	_, err = store.GetSessionByRefreshToken(ctx, session.RefreshTokenHash)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession_NonExistent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Deleting non-existent session should not error
	err := store.DeleteSession(ctx, "ses-nonexistent")
	assert.NoError(t, err)
}

func TestListUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	userID := int64(42)

	// Create multiple sessions for the same user
	ids := []string{"ses-test1", "ses-test2", "ses-test3"}
	for _, id := range ids {
		err := store.CreateSession(ctx, testSession(id, userID))
		require.NoError(t, err)
	}

	// A session for another user should not show up
	err := store.CreateSession(ctx, testSession("ses-other", 7))
	require.NoError(t, err)

	// List sessions
	retrieved, err := store.ListUserSessions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, retrieved, 3)

	// Verify all sessions are present
	seen := make(map[string]bool)
	for _, session := range retrieved {
		seen[session.ID] = true
		assert.Equal(t, userID, session.UserID)
	}

	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

func TestListUserSessions_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// List sessions for user with no sessions
	sessions, err := store.ListUserSessions(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteAllUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	userID := int64(42)
	for _, id := range []string{"ses-a", "ses-b"} {
		err := store.CreateSession(ctx, testSession(id, userID))
		require.NoError(t, err)
	}
	err := store.CreateSession(ctx, testSession("ses-keep", 7))
	require.NoError(t, err)

	err = store.DeleteAllUserSessions(ctx, userID)
	require.NoError(t, err)

	sessions, err := store.ListUserSessions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Other user's session survives
	_, err = store.GetSession(ctx, "ses-keep")
	assert.NoError(t, err)
}

func TestResetCode_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	code := &ResetCode{
		Email:     "Student@Example.Com",
		UserID:    42,
		Code:      "048213",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}

	err := store.SaveResetCode(ctx, code)
	require.NoError(t, err)

	// Lookup is case-insensitive on email
	retrieved, err := store.GetResetCode(ctx, "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "048213", retrieved.Code)
	assert.Equal(t, int64(42), retrieved.UserID)
}

func TestResetCode_Replaced(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first := &ResetCode{
		Email:     "student@example.com",
		UserID:    42,
		Code:      "111111",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveResetCode(ctx, first))

	second := &ResetCode{
		Email:     "student@example.com",
		UserID:    42,
		Code:      "222222",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveResetCode(ctx, second))

	retrieved, err := store.GetResetCode(ctx, "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", retrieved.Code)
}

func TestResetCode_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetResetCode(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrResetCodeNotFound)
}

func TestResetCode_Expired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	code := &ResetCode{
		Email:     "student@example.com",
		UserID:    42,
		Code:      "048213",
		ExpiresAt: time.Now().Add(50 * time.Millisecond),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveResetCode(ctx, code))

	time.Sleep(100 * time.Millisecond)

	_, err := store.GetResetCode(ctx, "student@example.com")
	assert.Error(t, err)
}

func TestResetCode_AttemptLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	code := &ResetCode{
		Email:     "student@example.com",
		UserID:    42,
		Code:      "048213",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveResetCode(ctx, code))

	// First few wrong attempts just bump the counter
	for range maxResetAttempts - 1 {
		err := store.RecordResetAttempt(ctx, "student@example.com")
		require.NoError(t, err)
	}

	// The final attempt invalidates the code
	err := store.RecordResetAttempt(ctx, "student@example.com")
	assert.ErrorIs(t, err, ErrTooManyResetAttempts)

	_, err = store.GetResetCode(ctx, "student@example.com")
	assert.ErrorIs(t, err, ErrResetCodeNotFound)
}

func TestResetCode_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	code := &ResetCode{
		Email:     "student@example.com",
		UserID:    42,
		Code:      "048213",
		ExpiresAt: time.Now().Add(10 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveResetCode(ctx, code))

	require.NoError(t, store.DeleteResetCode(ctx, "student@example.com"))

	_, err := store.GetResetCode(ctx, "student@example.com")
	assert.ErrorIs(t, err, ErrResetCodeNotFound)

	// Idempotent
	assert.NoError(t, store.DeleteResetCode(ctx, "student@example.com"))
}
