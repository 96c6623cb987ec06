package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// CreateProvider inserts a provider profile row for a user account.
// Returns ErrAlreadyExists if the user already has one.
func (s *Store) CreateProvider(ctx context.Context, p *domain.Provider) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO providers (created_at, user_id, phone) VALUES (?, ?, ?)`,
		formatTime(p.CreatedAt), p.UserID, p.Phone)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// scanProvider scans a row into a domain.Provider.
func scanProvider(scanner interface{ Scan(dest ...any) error }) (*domain.Provider, error) {
	var p domain.Provider
	var createdAt string

	if err := scanner.Scan(&p.ID, &createdAt, &p.UserID, &p.Phone); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProvider retrieves a provider profile by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, user_id, phone FROM providers WHERE id = ?`, id)

	p, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProviderByUserID retrieves the provider profile owned by a user.
// Returns ErrNotFound if the user has none.
func (s *Store) GetProviderByUserID(ctx context.Context, userID int64) (*domain.Provider, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, user_id, phone FROM providers WHERE user_id = ?`, userID)

	p, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProviders returns every provider profile, ordered by id.
func (s *Store) ListProviders(ctx context.Context) ([]*domain.Provider, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, user_id, phone FROM providers ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []*domain.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateProvider updates the mutable provider fields.
// Returns ErrNotFound if the provider does not exist.
func (s *Store) UpdateProvider(ctx context.Context, p *domain.Provider) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE providers SET phone = ? WHERE id = ?`, p.Phone, p.ID)
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

// DeleteProvider removes a provider profile, cascading to its offerings
// and their bookings. The user account row survives.
// Returns ErrNotFound if the provider does not exist.
func (s *Store) DeleteProvider(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM providers WHERE id = ?`, id)
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

// === Offerings ===

// offeringColumns is the ordered list of columns selected in offering
// queries. Must match the scan order in scanOffering.
const offeringColumns = `id, provider_id, service_id, available, rating, rating_count`

// scanOffering scans a row into a domain.Offering.
func scanOffering(scanner interface{ Scan(dest ...any) error }) (*domain.Offering, error) {
	var o domain.Offering
	var available int

	err := scanner.Scan(
		&o.ID,
		&o.ProviderID,
		&o.ServiceID,
		&available,
		&o.Rating,
		&o.RatingCount,
	)
	if err != nil {
		return nil, err
	}

	o.Available = available != 0
	return &o, nil
}

// CreateOffering links a provider to a service they perform.
// Returns ErrAlreadyExists for a duplicate provider/service pair.
func (s *Store) CreateOffering(ctx context.Context, o *domain.Offering) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO offerings (provider_id, service_id, available, rating, rating_count)
		VALUES (?, ?, ?, ?, ?)`,
		o.ProviderID, o.ServiceID, boolToInt(o.Available), o.Rating, o.RatingCount)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	o.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetOffering retrieves an offering by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetOffering(ctx context.Context, id int64) (*domain.Offering, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE id = ?`, id)

	o, err := scanOffering(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListProviderOfferings returns the offerings of one provider, ordered by id.
func (s *Store) ListProviderOfferings(ctx context.Context, providerID int64) ([]*domain.Offering, error) {
	return s.listOfferings(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE provider_id = ? ORDER BY id ASC`,
		providerID)
}

// ListServiceOfferings returns the offerings of every provider that
// performs the service, ordered by id. Auto-assignment takes the first
// available one, so the oldest provider link wins ties.
func (s *Store) ListServiceOfferings(ctx context.Context, serviceID int64) ([]*domain.Offering, error) {
	return s.listOfferings(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE service_id = ? ORDER BY id ASC`,
		serviceID)
}

func (s *Store) listOfferings(ctx context.Context, query string, arg int64) ([]*domain.Offering, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerings []*domain.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offerings, nil
}

// SetOfferingAvailability flips the availability toggle on one offering.
// Returns ErrNotFound if the offering does not exist or belongs to a
// different provider.
func (s *Store) SetOfferingAvailability(ctx context.Context, offeringID, providerID int64, available bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE offerings SET available = ? WHERE id = ? AND provider_id = ?`,
		boolToInt(available), offeringID, providerID)
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

// AddOfferingRating folds one more resident rating into the offering's
// running mean. Returns ErrNotFound if the offering does not exist.
func (s *Store) AddOfferingRating(ctx context.Context, offeringID int64, rating int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE offerings SET
			rating = (rating * rating_count + ?) / (rating_count + 1),
			rating_count = rating_count + 1
		WHERE id = ?`,
		rating, offeringID)
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
