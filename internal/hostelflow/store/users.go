package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, username, room_number,
	password_hash, is_active, is_admin, is_provider`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt  string
		updatedAt  string
		isActive   int
		isAdmin    int
		isProvider int
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.Username,
		&u.RoomNumber,
		&u.PasswordHash,
		&isActive,
		&isAdmin,
		&isProvider,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	u.IsActive = isActive != 0
	u.IsAdmin = isAdmin != 0
	u.IsProvider = isProvider != 0

	return &u, nil
}

// CreateUser inserts a new user and assigns the generated id to the struct.
// Returns ErrAlreadyExists if the email is already registered.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	emailLower := strings.ToLower(strings.TrimSpace(u.Email))

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			created_at, updated_at, email, email_lower, username, room_number,
			password_hash, is_active, is_admin, is_provider
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		emailLower,
		u.Username,
		u.RoomNumber,
		u.PasswordHash,
		boolToInt(u.IsActive),
		boolToInt(u.IsAdmin),
		boolToInt(u.IsProvider),
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

// GetUserByUsername retrieves the oldest user with the given username.
// Registration uses it to refuse an already-taken name.
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

// ListStudents returns every plain resident account: not providers, not
// admins. Ordered by creation time, oldest first.
func (s *Store) ListStudents(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_provider = 0 AND is_admin = 0
		 ORDER BY created_at ASC, id ASC`)
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
	emailLower := strings.ToLower(strings.TrimSpace(u.Email))

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			created_at = ?,
			updated_at = ?,
			email = ?,
			email_lower = ?,
			username = ?,
			room_number = ?,
			password_hash = ?,
			is_active = ?,
			is_admin = ?,
			is_provider = ?
		WHERE id = ?`,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		emailLower,
		u.Username,
		u.RoomNumber,
		u.PasswordHash,
		boolToInt(u.IsActive),
		boolToInt(u.IsAdmin),
		boolToInt(u.IsProvider),
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

// DeleteUser removes a user row, cascading to their bookings and
// notifications.
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
