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

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, author, isbn, description,
	cover_image, cover_blurhash, publish_date, rating, liked_percentage, genres,
	language, page_count, is_free, publisher, buy_now_url, preview_url, download_url`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		publishDate sql.NullString
		genres      string
		isFree      int
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Author,
		&b.ISBN,
		&b.Description,
		&b.CoverImage,
		&b.CoverBlurHash,
		&publishDate,
		&b.Rating,
		&b.LikedPercentage,
		&genres,
		&b.Language,
		&b.PageCount,
		&isFree,
		&b.Publisher,
		&b.BuyNowURL,
		&b.PreviewURL,
		&b.DownloadURL,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	b.PublishDate, err = parseNullableDate(publishDate)
	if err != nil {
		return nil, err
	}

	// Boolean fields.
	b.IsFree = isFree != 0

	// Parse genres JSON array.
	b.Genres, err = decodeGenres(genres)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// decodeGenres parses a stored genre list, keeping only string members.
// Imported rows occasionally carry numbers or nulls in the array; those
// entries are dropped rather than failing the whole row.
func decodeGenres(raw string) ([]string, error) {
	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err == nil {
		return genres, nil
	}

	var mixed []any
	if err := json.Unmarshal([]byte(raw), &mixed); err != nil {
		return nil, fmt.Errorf("unmarshal genres: %w", err)
	}
	genres = make([]string, 0, len(mixed))
	for _, v := range mixed {
		if s, ok := v.(string); ok {
			genres = append(genres, s)
		}
	}
	return genres, nil
}

// bookWriteArgs collects the non-id column values for inserts and updates.
func bookWriteArgs(b *domain.Book) ([]any, error) {
	genres, err := marshalStrings(b.Genres)
	if err != nil {
		return nil, err
	}
	return []any{
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		b.Title,
		b.Author,
		b.ISBN,
		b.Description,
		b.CoverImage,
		b.CoverBlurHash,
		nullDateString(b.PublishDate),
		b.Rating,
		b.LikedPercentage,
		genres,
		b.Language,
		b.PageCount,
		boolToInt(b.IsFree),
		b.Publisher,
		b.BuyNowURL,
		b.PreviewURL,
		b.DownloadURL,
	}, nil
}

// CreateBook inserts a new book and assigns the generated id to the struct.
// Returns ErrAlreadyExists if the ISBN is already in the catalog.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	args, err := bookWriteArgs(b)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			created_at, updated_at, title, author, isbn, description,
			cover_image, cover_blurhash, publish_date, rating, liked_percentage,
			genres, language, page_count, is_free, publisher, buy_now_url,
			preview_url, download_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
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

// GetBook retrieves a book by id.
// Returns ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByISBN retrieves a book by its ISBN.
// Returns ErrNotFound if no book carries the ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, domainerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs returns the books with the given ids, ordered by id.
// Ids with no matching book are silently skipped; callers that care about
// the request order reorder the result themselves.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []int64) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT %s FROM books WHERE id IN (%s) ORDER BY id ASC`,
		bookColumns,
		strings.Join(placeholders, ","),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// ListBooks returns the whole catalog ordered by id.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// ListBooksExcluding returns the catalog minus the given ids, ordered by id.
// The stable order keeps downstream ranking deterministic.
func (s *Store) ListBooksExcluding(ctx context.Context, excludeIDs []int64) ([]*domain.Book, error) {
	if len(excludeIDs) == 0 {
		return s.ListBooks(ctx)
	}

	placeholders := make([]string, len(excludeIDs))
	args := make([]any, len(excludeIDs))
	for i, id := range excludeIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT %s FROM books WHERE id NOT IN (%s) ORDER BY id ASC`,
		bookColumns,
		strings.Join(placeholders, ","),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// UpdateBook performs a full row update on an existing book.
// Returns ErrNotFound if the book does not exist, ErrAlreadyExists if the
// new ISBN collides with another book.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	args, err := bookWriteArgs(b)
	if err != nil {
		return err
	}
	args = append(args, b.ID)

	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			created_at = ?,
			updated_at = ?,
			title = ?,
			author = ?,
			isbn = ?,
			description = ?,
			cover_image = ?,
			cover_blurhash = ?,
			publish_date = ?,
			rating = ?,
			liked_percentage = ?,
			genres = ?,
			language = ?,
			page_count = ?,
			is_free = ?,
			publisher = ?,
			buy_now_url = ?,
			preview_url = ?,
			download_url = ?
		WHERE id = ?`,
		args...,
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

// DeleteBook removes a book row.
// Returns ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
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

// UpsertBookByISBN inserts the book, or updates the existing row that shares
// its ISBN. The existing row keeps its id and created_at. Returns true when a
// new row was created.
func (s *Store) UpsertBookByISBN(ctx context.Context, b *domain.Book) (created bool, err error) {
	existing, err := s.GetBookByISBN(ctx, b.ISBN)
	if err == nil {
		b.ID = existing.ID
		b.CreatedAt = existing.CreatedAt
		return false, s.UpdateBook(ctx, b)
	}
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return false, err
	}

	if err := s.CreateBook(ctx, b); err != nil {
		// Lost a race with a concurrent insert of the same ISBN: retry as update.
		if domainerrors.Is(err, domainerrors.ErrAlreadyExists) {
			return s.UpsertBookByISBN(ctx, b)
		}
		return false, err
	}
	return true, nil
}

// ExploreQuery holds the explore endpoint's filters and pagination window.
// String filters are substring matches; empty values are skipped.
type ExploreQuery struct {
	Author      string
	ISBN        string
	Genre       string
	PublishYear string
	Publisher   string
	Language    string
	ExcludeIDs  []int64
	Offset      int
	Limit       int
}

// ExploreBooks returns one page of the filtered catalog plus the total number
// of matches, ordered by id.
func (s *Store) ExploreBooks(ctx context.Context, q ExploreQuery) ([]*domain.Book, int64, error) {
	var (
		conds []string
		args  []any
	)

	like := func(column, value string) {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", column))
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(value))+"%")
	}

	if q.Author != "" {
		like("author", q.Author)
	}
	if q.ISBN != "" {
		like("isbn", q.ISBN)
	}
	if q.Genre != "" {
		// Genres are stored as a JSON array; a substring match over the
		// serialized text mirrors the behavior readers expect from the
		// filter UI.
		like("genres", q.Genre)
	}
	if q.PublishYear != "" {
		conds = append(conds, "substr(publish_date, 1, 4) = ?")
		args = append(args, strings.TrimSpace(q.PublishYear))
	}
	if q.Publisher != "" {
		like("publisher", q.Publisher)
	}
	if q.Language != "" {
		like("language", q.Language)
	}
	if len(q.ExcludeIDs) > 0 {
		placeholders := make([]string, len(q.ExcludeIDs))
		for i, id := range q.ExcludeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, fmt.Sprintf("id NOT IN (%s)", strings.Join(placeholders, ",")))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageArgs := append(args, q.Limit, q.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books`+where+` ORDER BY id ASC LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// AdminSearchBooks returns one page of books matching the admin search query
// plus the total number of matches. The query matches title and author
// prefixes, and ISBN and genre substrings. An empty query matches everything.
func (s *Store) AdminSearchBooks(ctx context.Context, query string, offset, limit int) ([]*domain.Book, int64, error) {
	var (
		where string
		args  []any
	)

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		where = ` WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(genres) LIKE ? OR LOWER(isbn) LIKE ?`
		args = []any{q + "%", q + "%", "%" + q + "%", "%" + q + "%"}
	}

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	pageArgs := append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books`+where+` ORDER BY id ASC LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// SearchBooksPrefix finds books whose title or author starts with the query,
// case-insensitively. Used as the fallback when the search index is cold.
func (s *Store) SearchBooksPrefix(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books
		WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ?
		ORDER BY id ASC LIMIT ?`,
		q+"%", q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBooks(rows)
}

// DistinctAuthors returns up to limit distinct author names, alphabetically.
func (s *Store) DistinctAuthors(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT author FROM books WHERE author != '' ORDER BY author ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStrings(rows)
}

// DistinctLanguages returns all distinct languages in the catalog, alphabetically.
func (s *Store) DistinctLanguages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT language FROM books WHERE language != '' ORDER BY language ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStrings(rows)
}

// collectBooks drains rows into a book slice.
func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// collectStrings drains a single-column string result set.
func collectStrings(rows *sql.Rows) ([]string, error) {
	var vals []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vals, nil
}
