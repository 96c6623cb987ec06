package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// bookingColumns is the ordered list of columns selected in booking
// queries. Must match the scan order in scanBooking.
const bookingColumns = `id, created_at, updated_at, user_id, offering_id, date,
	time_slot, special_instructions, status, comment`

// scanBooking scans a row into a domain.Booking.
func scanBooking(scanner interface{ Scan(dest ...any) error }) (*domain.Booking, error) {
	var b domain.Booking

	var (
		createdAt string
		updatedAt string
		date      string
		status    string
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.UserID,
		&b.OfferingID,
		&date,
		&b.TimeSlot,
		&b.SpecialInstructions,
		&status,
		&b.Comment,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.Date, err = parseDate(date)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)

	return &b, nil
}

// CreateBooking inserts a booking and assigns the generated id.
// Returns ErrAlreadyExists when the offering already has a live booking
// in the same slot on the same date.
func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			created_at, updated_at, user_id, offering_id, date, time_slot,
			special_instructions, status, comment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		b.UserID,
		b.OfferingID,
		formatDate(b.Date),
		b.TimeSlot,
		b.SpecialInstructions,
		string(b.Status),
		b.Comment,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	b.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBooking performs a full row update on an existing booking.
// Returns ErrNotFound if the booking does not exist, ErrAlreadyExists if
// the change would claim a slot another live booking holds.
func (s *Store) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET
			created_at = ?,
			updated_at = ?,
			user_id = ?,
			offering_id = ?,
			date = ?,
			time_slot = ?,
			special_instructions = ?,
			status = ?,
			comment = ?
		WHERE id = ?`,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		b.UserID,
		b.OfferingID,
		formatDate(b.Date),
		b.TimeSlot,
		b.SpecialInstructions,
		string(b.Status),
		b.Comment,
		b.ID,
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

// BookingDetail is a booking joined with the rows it references, shaped
// for serialization: who booked, which service, which provider.
type BookingDetail struct {
	Booking *domain.Booking

	// Resident who made the booking.
	UserEmail    string
	Username     string
	RoomNumber   string
	UserIsActive bool

	// Offering the booking was assigned to.
	ProviderID        int64
	OfferingAvailable bool
	OfferingRating    float64

	// Service behind the offering.
	ServiceID      int64
	ServiceName    string
	ServicePrice   int64 // cents
	ServiceSummary string
}

// bookingDetailQuery joins bookings with their resident, offering, and
// service rows. Callers append WHERE/ORDER BY clauses.
const bookingDetailQuery = `
	SELECT b.id, b.created_at, b.updated_at, b.user_id, b.offering_id, b.date,
	       b.time_slot, b.special_instructions, b.status, b.comment,
	       u.email, u.username, u.room_number, u.is_active,
	       o.provider_id, o.available, o.rating,
	       sv.id, sv.name, sv.price_cents, sv.description
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN offerings o ON o.id = b.offering_id
	JOIN services sv ON sv.id = o.service_id`

// scanBookingDetail scans one joined row.
func scanBookingDetail(scanner interface{ Scan(dest ...any) error }) (*BookingDetail, error) {
	var d BookingDetail
	var b domain.Booking

	var (
		createdAt string
		updatedAt string
		date      string
		status    string
		isActive  int
		available int
	)

	err := scanner.Scan(
		&b.ID, &createdAt, &updatedAt, &b.UserID, &b.OfferingID, &date,
		&b.TimeSlot, &b.SpecialInstructions, &status, &b.Comment,
		&d.UserEmail, &d.Username, &d.RoomNumber, &isActive,
		&d.ProviderID, &available, &d.OfferingRating,
		&d.ServiceID, &d.ServiceName, &d.ServicePrice, &d.ServiceSummary,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.Date, err = parseDate(date)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)

	d.Booking = &b
	d.UserIsActive = isActive != 0
	d.OfferingAvailable = available != 0
	return &d, nil
}

func (s *Store) listBookingDetails(ctx context.Context, query string, args ...any) ([]*BookingDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetBookingDetail retrieves one booking with its joined rows.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetBookingDetail(ctx context.Context, id int64) (*BookingDetail, error) {
	row := s.db.QueryRowContext(ctx, bookingDetailQuery+` WHERE b.id = ?`, id)

	d, err := scanBookingDetail(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListUserBookings returns one resident's bookings, newest date first,
// then newest id.
func (s *Store) ListUserBookings(ctx context.Context, userID int64) ([]*BookingDetail, error) {
	return s.listBookingDetails(ctx,
		bookingDetailQuery+` WHERE b.user_id = ? ORDER BY b.date DESC, b.id DESC`,
		userID)
}

// ListProviderBookings returns every booking assigned to one provider's
// offerings, newest date first, then newest id.
func (s *Store) ListProviderBookings(ctx context.Context, providerID int64) ([]*BookingDetail, error) {
	return s.listBookingDetails(ctx,
		bookingDetailQuery+` WHERE o.provider_id = ? ORDER BY b.date DESC, b.id DESC`,
		providerID)
}

// ListBookings returns every booking, optionally filtered to one status,
// newest date first, then newest id.
func (s *Store) ListBookings(ctx context.Context, status domain.BookingStatus) ([]*BookingDetail, error) {
	if status != "" {
		return s.listBookingDetails(ctx,
			bookingDetailQuery+` WHERE b.status = ? ORDER BY b.date DESC, b.id DESC`,
			string(status))
	}
	return s.listBookingDetails(ctx,
		bookingDetailQuery+` ORDER BY b.date DESC, b.id DESC`)
}

// SlotClaim marks one offering as taken for one time slot.
type SlotClaim struct {
	OfferingID int64
	TimeSlot   string
}

// ListSlotClaims returns the live (non-Cancelled) slot claims for a
// service on a date. Availability and auto-assignment both read these.
func (s *Store) ListSlotClaims(ctx context.Context, serviceID int64, date time.Time) ([]SlotClaim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.offering_id, b.time_slot
		FROM bookings b
		JOIN offerings o ON o.id = b.offering_id
		WHERE o.service_id = ? AND b.date = ? AND b.status != ?`,
		serviceID, formatDate(date), string(domain.StatusCancelled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []SlotClaim
	for rows.Next() {
		var c SlotClaim
		if err := rows.Scan(&c.OfferingID, &c.TimeSlot); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

// UserBookingStats aggregates one resident's bookings for the dashboard.
type UserBookingStats struct {
	Booked        int64
	InProgress    int64
	Completed     int64
	PendingReview int64
	Total         int64
}

// GetUserBookingStats computes the dashboard counters for one resident
// in SQL rather than loading every row.
func (s *Store) GetUserBookingStats(ctx context.Context, userID int64) (*UserBookingStats, error) {
	var stats UserBookingStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'Booked'), 0),
			COALESCE(SUM(status = 'In Progress'), 0),
			COALESCE(SUM(status = 'Completed'), 0),
			COALESCE(SUM(status = 'Completed' AND comment = ''), 0)
		FROM bookings WHERE user_id = ?`, userID).Scan(
		&stats.Total,
		&stats.Booked,
		&stats.InProgress,
		&stats.Completed,
		&stats.PendingReview,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
