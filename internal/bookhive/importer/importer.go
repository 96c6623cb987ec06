// Package importer loads books into the catalog from CSV files, either
// uploaded through the admin API or dropped into a watched directory.
package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// requiredColumns must all be present in the CSV header.
var requiredColumns = []string{"title", "author", "isbn"}

// Importer runs CSV imports against the catalog store and keeps the search
// index in step with what it writes.
type Importer struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// New creates an importer writing to the given store and search index.
func New(st *store.Store, index *search.SearchIndex, logger *slog.Logger) *Importer {
	return &Importer{
		store:  st,
		index:  index,
		logger: logger.With("component", "importer"),
	}
}

// RowError describes a single rejected CSV row. Row numbers are 1-based
// file line numbers, so the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"error"`
	ISBN    string `json:"isbn,omitempty"`
}

// Report summarizes one import run.
type Report struct {
	JobID   string     `json:"job_id"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
	Columns []string   `json:"column_names"`
}

// ImportCSV reads the whole CSV stream and upserts one book per row,
// matching on ISBN. Row-level failures are collected into the report and
// the import carries on; only an unreadable file or a missing required
// column fails the run as a whole.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Report, error) {
	jobID := uuid.New().String()
	logger := im.logger.With("job_id", jobID)

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, domainerrors.Validationf("Failed to parse CSV: %v", err)
	}
	columns := normalizeHeader(header)

	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, seen := colIndex[c]; !seen {
			colIndex[c] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := colIndex[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, domainerrors.Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	report := &Report{
		JobID:   jobID,
		Errors:  make([]RowError, 0),
		Columns: columns,
	}
	var touched []*domain.Book

	row := 1 // the header line
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, domainerrors.Validationf("Failed to parse CSV: %v", err)
		}

		get := func(name string) string {
			i, ok := colIndex[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		isbn := get("isbn")
		if isbn == "" {
			report.Errors = append(report.Errors, RowError{Row: row, Message: "Missing ISBN"})
			continue
		}

		book := rowToBook(get)
		book.ISBN = isbn
		now := time.Now().UTC()
		book.CreatedAt = now
		book.UpdatedAt = now

		created, err := im.store.UpsertBookByISBN(ctx, book)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: row, Message: err.Error(), ISBN: isbn})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
		touched = append(touched, book)
	}
	report.Failed = len(report.Errors)

	// The search index is rebuildable, so indexing failure downgrades to a
	// warning rather than undoing the import.
	if len(touched) > 0 {
		docs := make([]*search.Document, len(touched))
		for i, b := range touched {
			docs[i] = search.DocumentFromBook(b)
		}
		if err := im.index.IndexBooks(docs); err != nil {
			logger.Warn("failed to index imported books", "error", err)
		}
	}

	logger.Info("csv import finished",
		"created", report.Created,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	return report, nil
}

// rowToBook maps one CSV record onto a catalog book using best-effort
// conversions: unparseable dates and numbers fall back to zero values
// instead of rejecting the row.
func rowToBook(get func(string) string) *domain.Book {
	language := get("language")
	if language == "" {
		language = domain.DefaultLanguage
	}

	return &domain.Book{
		Title:           get("title"),
		Author:          get("author"),
		Description:     get("description"),
		CoverImage:      get("cover_image"),
		PublishDate:     parsePublishDate(get("publish_date")),
		Rating:          parseFloat(get("rating")),
		LikedPercentage: parseFloat(get("liked_percentage")),
		Genres:          splitGenres(get("genres")),
		Language:        language,
		PageCount:       parseInt(get("page_count")),
		IsFree:          parseBool(get("is_free")),
		Publisher:       get("publisher"),
		BuyNowURL:       ensureValidURL(get("buy_now_url")),
		PreviewURL:      ensureValidURL(get("preview_url")),
		DownloadURL:     ensureValidURL(get("download_url")),
	}
}

// normalizeHeader cleans column names: strips the UTF-8 BOM, surrounding
// whitespace, and case, so " Title " and "ISBN" both resolve.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns[i] = strings.ToLower(strings.TrimSpace(col))
	}
	return columns
}

// publishDateLayouts are tried in order: ISO date and datetime first, then
// US slashed dates, then day-first dashed dates.
var publishDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02-01-2006",
}

func parsePublishDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func splitGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

// ensureValidURL prefixes bare domains with https:// so stored links are
// always absolute. Empty values stay empty.
func ensureValidURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}
