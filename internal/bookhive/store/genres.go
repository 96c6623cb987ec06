package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, name, slug`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre
	if err := scanner.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGenre inserts a new genre and assigns the generated id to the struct.
// Returns ErrAlreadyExists if the name is taken.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (name, slug) VALUES (?, ?)`, g.Name, g.Slug)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}

	g.ID, err = result.LastInsertId()
	if err != nil {
		return err
	}
	return nil
}

// GetGenre retrieves a genre by id.
// Returns ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(ctx context.Context, id int64) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ?`, id)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGenreByName retrieves a genre by exact name.
// Returns ErrNotFound if the genre does not exist.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE name = ?`, name)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetOrCreateGenre retrieves the genre with the given name or creates it.
// Returns true when a new row was created.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, bool, error) {
	existing, err := s.GetGenreByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	g := &domain.Genre{Name: name, Slug: domain.Slugify(name)}
	if err := s.CreateGenre(ctx, g); err != nil {
		// Lost a race with a concurrent create of the same name.
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			existing, err := s.GetGenreByName(ctx, name)
			return existing, false, err
		}
		return nil, false, err
	}
	return g, true, nil
}

// ListGenres returns genres ordered by name. A non-empty query filters by
// name substring, case-insensitively.
func (s *Store) ListGenres(ctx context.Context, query string) ([]*domain.Genre, error) {
	var (
		where string
		args  []any
	)
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		where = ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+q+"%")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres`+where+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}

// UpdateGenre performs a full row update on an existing genre.
// Returns ErrNotFound if the genre does not exist, ErrAlreadyExists if the
// new name is taken.
func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE genres SET name = ?, slug = ? WHERE id = ?`, g.Name, g.Slug, g.ID)
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

// DeleteGenre removes a genre row. Books keep the genre name in their own
// lists; deleting a genre does not retag books.
// Returns ErrNotFound if the genre does not exist.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
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

// CountGenres returns the total number of genres.
func (s *Store) CountGenres(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genres`).Scan(&count)
	return count, err
}
