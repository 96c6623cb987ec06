package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// CreateNotification inserts a notification and assigns the generated id.
func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) error {
	var bookingID sql.NullInt64
	if n.BookingID != nil {
		bookingID = sql.NullInt64{Int64: *n.BookingID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (created_at, user_id, message, booking_id, read)
		VALUES (?, ?, ?, ?, ?)`,
		formatTime(n.CreatedAt),
		n.UserID,
		n.Message,
		bookingID,
		boolToInt(n.Read),
	)
	if err != nil {
		return err
	}

	n.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// ListUserNotifications returns one user's notifications, newest first.
func (s *Store) ListUserNotifications(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, user_id, message, booking_id, read
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt string
		var bookingID sql.NullInt64
		var read int

		if err := rows.Scan(&n.ID, &createdAt, &n.UserID, &n.Message, &bookingID, &read); err != nil {
			return nil, err
		}
		n.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		if bookingID.Valid {
			n.BookingID = &bookingID.Int64
		}
		n.Read = read != 0

		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead marks one notification as read. Scoped to the
// owning user so nobody can flip someone else's.
// Returns ErrNotFound if the notification does not exist for the user.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
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

// MarkAllNotificationsRead marks every unread notification of one user
// as read. Returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
