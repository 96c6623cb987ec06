package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// serviceColumns is the ordered list of columns selected in service
// queries. Must match the scan order in scanService.
const serviceColumns = `id, created_at, name, description, price_cents`

// scanService scans a row into a domain.Service.
func scanService(scanner interface{ Scan(dest ...any) error }) (*domain.Service, error) {
	var svc domain.Service
	var createdAt string

	err := scanner.Scan(
		&svc.ID,
		&createdAt,
		&svc.Name,
		&svc.Description,
		&svc.PriceCents,
	)
	if err != nil {
		return nil, err
	}

	svc.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// CreateService inserts a new service and assigns the generated id.
func (s *Store) CreateService(ctx context.Context, svc *domain.Service) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO services (created_at, name, description, price_cents)
		VALUES (?, ?, ?, ?)`,
		formatTime(svc.CreatedAt),
		svc.Name,
		svc.Description,
		svc.PriceCents,
	)
	if err != nil {
		return err
	}

	svc.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetService retrieves a service by id.
// Returns ErrNotFound if the service does not exist.
func (s *Store) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)

	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// GetServiceByName retrieves a service by name, case-insensitively.
// Returns ErrNotFound if no service uses the name.
func (s *Store) GetServiceByName(ctx context.Context, name string) (*domain.Service, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE name = ? COLLATE NOCASE
		 ORDER BY id ASC LIMIT 1`,
		strings.TrimSpace(name))

	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// ServiceListing is a service together with how many providers currently
// offer it.
type ServiceListing struct {
	Service       *domain.Service
	ProviderCount int64
}

// ListServices returns every service with its provider count, ordered by id.
func (s *Store) ListServices(ctx context.Context) ([]*ServiceListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+serviceColumns+`,
		       (SELECT COUNT(*) FROM offerings o WHERE o.service_id = services.id) AS provider_count
		FROM services ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*ServiceListing
	for rows.Next() {
		var svc domain.Service
		var createdAt string
		var count int64
		if err := rows.Scan(&svc.ID, &createdAt, &svc.Name, &svc.Description,
			&svc.PriceCents, &count); err != nil {
			return nil, err
		}
		svc.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		listings = append(listings, &ServiceListing{Service: &svc, ProviderCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// CountServices returns the total number of services.
func (s *Store) CountServices(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count)
	return count, err
}
