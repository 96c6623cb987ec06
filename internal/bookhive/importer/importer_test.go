package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store, *search.SearchIndex) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return New(st, index, logger), st, index
}

func TestImportCSV_CreatesBooks(t *testing.T) {
	imp, st, index := newTestImporter(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"title,author,isbn,genres,rating,language,publish_date,is_free",
		"Dune,Frank Herbert,9780441013593,\"Science Fiction, Classic\",4.6,English,1965-08-01,no",
		"Emma,Jane Austen,9780141439587,Romance,4.1,English,12/23/1815,yes",
	}, "\n")

	report, err := imp.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Errors)
	assert.NotEmpty(t, report.JobID)
	assert.Equal(t, []string{"title", "author", "isbn", "genres", "rating", "language", "publish_date", "is_free"}, report.Columns)

	dune, err := st.GetBookByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, "Frank Herbert", dune.Author)
	assert.Equal(t, []string{"Science Fiction", "Classic"}, dune.Genres)
	assert.Equal(t, 4.6, dune.Rating)
	require.NotNil(t, dune.PublishDate)
	assert.Equal(t, 1965, dune.PublishDate.Year())
	assert.False(t, dune.IsFree)

	emma, err := st.GetBookByISBN(ctx, "9780141439587")
	require.NoError(t, err)
	require.NotNil(t, emma.PublishDate)
	assert.Equal(t, time.December, emma.PublishDate.Month())
	assert.Equal(t, 23, emma.PublishDate.Day())
	assert.True(t, emma.IsFree)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestImportCSV_UpdatesExistingByISBN(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	first := "title,author,isbn\nOld Title,Someone,isbn-1"
	report, err := imp.ImportCSV(ctx, strings.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	second := "title,author,isbn\nNew Title,Someone,isbn-1"
	report, err = imp.ImportCSV(ctx, strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Updated)

	book, err := st.GetBookByISBN(ctx, "isbn-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", book.Title)
}

func TestImportCSV_MissingRequiredColumns(t *testing.T) {
	imp, _, _ := newTestImporter(t)

	_, err := imp.ImportCSV(context.Background(), strings.NewReader("title,author\nA,B"))

	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "Missing required fields: isbn")
}

func TestImportCSV_RowWithoutISBNIsReported(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"title,author,isbn",
		"No ISBN Book,A,",
		"Good Book,B,isbn-good",
	}, "\n")

	report, err := imp.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row, "first data row is file row 2")
	assert.Equal(t, "Missing ISBN", report.Errors[0].Message)

	_, err = st.GetBookByISBN(ctx, "isbn-good")
	assert.NoError(t, err, "rows after a bad one still import")
}

func TestImportCSV_HeaderNormalization(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	csv := "\ufeff Title ,AUTHOR,Isbn\nClean,A,isbn-clean"

	report, err := imp.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	book, err := st.GetBookByISBN(ctx, "isbn-clean")
	require.NoError(t, err)
	assert.Equal(t, "Clean", book.Title)
}

func TestImportCSV_ParseFailure(t *testing.T) {
	imp, _, _ := newTestImporter(t)

	_, err := imp.ImportCSV(context.Background(), strings.NewReader("title,author,isbn\n\"unterminated,A,isbn-x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to parse CSV")
}

func TestImportCSV_RaggedRowsTolerated(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	// Second data row is short: missing cells read as empty.
	csv := strings.Join([]string{
		"title,author,isbn,publisher",
		"Full Row,A,isbn-full,Best Press",
		"Short Row,B,isbn-short",
	}, "\n")

	report, err := imp.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	short, err := st.GetBookByISBN(ctx, "isbn-short")
	require.NoError(t, err)
	assert.Equal(t, "", short.Publisher)
}

func TestRowToBook_Conversions(t *testing.T) {
	fields := map[string]string{
		"title":            "  Spaced  ",
		"author":           "A",
		"rating":           "4.5",
		"liked_percentage": "92%",
		"page_count":       "320",
		"genres":           "Fantasy, ,Epic,  ",
		"language":         "",
		"is_free":          "YES",
		"buy_now_url":      "shop.example.com/buy",
		"preview_url":      "https://example.com/preview",
		"download_url":     "",
		"publish_date":     "not-a-date",
	}
	get := func(name string) string { return strings.TrimSpace(fields[name]) }

	book := rowToBook(get)

	assert.Equal(t, "Spaced", book.Title)
	assert.Equal(t, 4.5, book.Rating)
	assert.Equal(t, 92.0, book.LikedPercentage, "percent signs are stripped")
	assert.Equal(t, 320, book.PageCount)
	assert.Equal(t, []string{"Fantasy", "Epic"}, book.Genres)
	assert.Equal(t, "English", book.Language, "missing language defaults")
	assert.True(t, book.IsFree)
	assert.Equal(t, "https://shop.example.com/buy", book.BuyNowURL, "bare domains gain https://")
	assert.Equal(t, "https://example.com/preview", book.PreviewURL)
	assert.Equal(t, "", book.DownloadURL)
	assert.Nil(t, book.PublishDate, "unparseable dates import as unset")
}

func TestParsePublishDate_Layouts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // yyyy-mm-dd, empty means nil
	}{
		{"iso date", "2020-05-09", "2020-05-09"},
		{"iso datetime", "2020-05-09T10:30:00", "2020-05-09"},
		{"rfc3339", "2020-05-09T10:30:00Z", "2020-05-09"},
		{"us slashed", "05/09/2020", "2020-05-09"},
		{"day first dashed", "09-05-2020", "2020-05-09"},
		{"garbage", "next tuesday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePublishDate(tt.raw)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format(time.DateOnly))
		})
	}
}
