package store

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, username, first_name, last_name,
	password_hash, is_active, is_admin, favorite_genres, saved_book_ids,
	legacy_saved_ids, preferred_language, notifications_enabled`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt     string
		updatedAt     string
		isActive      int
		isAdmin       int
		favGenres     string
		savedIDs      string
		legacyIDs     string
		notifications int
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&isActive,
		&isAdmin,
		&favGenres,
		&savedIDs,
		&legacyIDs,
		&u.PreferredLanguage,
		&notifications,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	// Boolean fields.
	u.IsActive = isActive != 0
	u.IsAdmin = isAdmin != 0
	u.NotificationsEnabled = notifications != 0

	// Parse JSON list columns.
	if err := json.Unmarshal([]byte(favGenres), &u.FavoriteGenres); err != nil {
		return nil, fmt.Errorf("unmarshal favorite_genres: %w", err)
	}
	if err := json.Unmarshal([]byte(savedIDs), &u.SavedBookIDs); err != nil {
		return nil, fmt.Errorf("unmarshal saved_book_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(legacyIDs), &u.LegacySavedIDs); err != nil {
		return nil, fmt.Errorf("unmarshal legacy_saved_ids: %w", err)
	}

	return &u, nil
}

// CreateUser inserts a new user and assigns the generated id to the struct.
// Returns ErrAlreadyExists if the email is already registered.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	favGenres, err := marshalStrings(u.FavoriteGenres)
	if err != nil {
		return err
	}
	savedIDs, err := marshalIDs(u.SavedBookIDs)
	if err != nil {
		return err
	}
	legacyIDs, err := marshalIDs(u.LegacySavedIDs)
	if err != nil {
		return err
	}

	emailLower := strings.ToLower(strings.TrimSpace(u.Email))

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			created_at, updated_at, email, email_lower, username, first_name,
			last_name, password_hash, is_active, is_admin, favorite_genres,
			saved_book_ids, legacy_saved_ids, preferred_language, notifications_enabled
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		emailLower,
		u.Username,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		boolToInt(u.IsActive),
		boolToInt(u.IsAdmin),
		favGenres,
		savedIDs,
		legacyIDs,
		u.PreferredLanguage,
		boolToInt(u.NotificationsEnabled),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	u.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
// Returns ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
// Returns ErrNotFound if no account uses the email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	lower := strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, lower)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
// Usernames are not unique at the schema level, so this returns the oldest
// match; registration uses it to refuse an already-taken name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? ORDER BY id ASC LIMIT 1`,
		strings.TrimSpace(username))

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser performs a full row update on an existing user.
// Returns ErrNotFound if the user does not exist, ErrAlreadyExists if the
// new email collides with another account.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	favGenres, err := marshalStrings(u.FavoriteGenres)
	if err != nil {
		return err
	}
	savedIDs, err := marshalIDs(u.SavedBookIDs)
	if err != nil {
		return err
	}
	legacyIDs, err := marshalIDs(u.LegacySavedIDs)
	if err != nil {
		return err
	}

	emailLower := strings.ToLower(strings.TrimSpace(u.Email))

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			created_at = ?,
			updated_at = ?,
			email = ?,
			email_lower = ?,
			username = ?,
			first_name = ?,
			last_name = ?,
			password_hash = ?,
			is_active = ?,
			is_admin = ?,
			favorite_genres = ?,
			saved_book_ids = ?,
			legacy_saved_ids = ?,
			preferred_language = ?,
			notifications_enabled = ?
		WHERE id = ?`,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		emailLower,
		u.Username,
		u.FirstName,
		u.LastName,
		u.PasswordHash,
		boolToInt(u.IsActive),
		boolToInt(u.IsAdmin),
		favGenres,
		savedIDs,
		legacyIDs,
		u.PreferredLanguage,
		boolToInt(u.NotificationsEnabled),
		u.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user row.
// Returns ErrNotFound if the user does not exist.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// GetUserFavoriteGenres returns the user's favorite genre names without
// loading the full record.
// Returns ErrNotFound if the user does not exist.
func (s *Store) GetUserFavoriteGenres(ctx context.Context, userID int64) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT favorite_genres FROM users WHERE id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err != nil {
		return nil, fmt.Errorf("unmarshal favorite_genres: %w", err)
	}
	return genres, nil
}

// GetUserSavedIDs returns the user's saved book ids in save order without
// loading the full record.
// Returns ErrNotFound if the user does not exist.
func (s *Store) GetUserSavedIDs(ctx context.Context, userID int64) ([]int64, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT saved_book_ids FROM users WHERE id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal saved_book_ids: %w", err)
	}
	return ids, nil
}
