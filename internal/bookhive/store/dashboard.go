package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
)

// GenreCount pairs a genre name with the number of books carrying it.
type GenreCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CountBooks returns the total number of books.
func (s *Store) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

// CountBooksCreatedOn returns the number of books created on the given UTC day.
func (s *Store) CountBooksCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE substr(created_at, 1, 10) = ?`,
		formatDate(day)).Scan(&count)
	return count, err
}

// AverageRating returns the mean rating across the catalog, 0 when empty.
func (s *Store) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0) FROM books`).Scan(&avg)
	return avg, err
}

// SumSavedBooks returns the total number of saved-list entries across all users.
func (s *Store) SumSavedBooks(ctx context.Context) (int64, error) {
	var sum int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(json_array_length(saved_book_ids)), 0) FROM users`).Scan(&sum)
	return sum, err
}

// TopGenres returns the most common genre names across the catalog with
// their book counts, most common first. Ties break alphabetically.
func (s *Store) TopGenres(ctx context.Context, limit int) ([]GenreCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT je.value, COUNT(*) AS n
		FROM books b, json_each(b.genres) je
		GROUP BY je.value
		ORDER BY n DESC, je.value ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []GenreCount
	for rows.Next() {
		var gc GenreCount
		if err := rows.Scan(&gc.Name, &gc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// TopRatedSince returns books touched since the cutoff, best rated first,
// newest first within a rating.
func (s *Store) TopRatedSince(ctx context.Context, since time.Time, limit int) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books
		WHERE updated_at >= ?
		ORDER BY rating DESC, created_at DESC
		LIMIT ?`,
		formatTime(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// LatestBooksExcluding returns the newest books not in the given id set.
// Used to pad short dashboard lists.
func (s *Store) LatestBooksExcluding(ctx context.Context, excludeIDs []int64, limit int) ([]*domain.Book, error) {
	var (
		where string
		args  []any
	)
	if len(excludeIDs) > 0 {
		placeholders := make([]string, len(excludeIDs))
		for i, id := range excludeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = fmt.Sprintf(" WHERE id NOT IN (%s)", strings.Join(placeholders, ","))
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books`+where+` ORDER BY created_at DESC, id DESC LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}
