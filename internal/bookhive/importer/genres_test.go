package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

func TestImportGenresCSV_WithHeader(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"name,notes",
		"Fantasy,swords",
		"Mystery,",
		" ,orphaned notes",
		"Fantasy,again",
	}, "\n")

	report, err := imp.ImportGenresCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Existing)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Row)
	assert.Equal(t, "Missing name", report.Errors[0].Message)

	for _, name := range []string{"Fantasy", "Mystery"} {
		_, err := st.GetGenreByName(ctx, name)
		require.NoError(t, err, "genre %q", name)
	}
}

func TestImportGenresCSV_GenreHeader(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	csv := "id,genre\n1,Romance\n2,Thriller\n"
	report, err := imp.ImportGenresCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Empty(t, report.Errors)

	_, err = st.GetGenreByName(ctx, "Romance")
	require.NoError(t, err)
}

func TestImportGenresCSV_NoHeader(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	content := strings.Join([]string{
		"Fantasy",
		"Sci-Fi,ignored tail",
		"",
		"Fantasy",
	}, "\n")

	report, err := imp.ImportGenresCSV(ctx, strings.NewReader(content))
	require.NoError(t, err)

	// Without a header every line counts, the first included.
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Existing)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Equal(t, "Empty line", report.Errors[0].Message)

	_, err = st.GetGenreByName(ctx, "Sci-Fi")
	require.NoError(t, err)
}

func TestImportGenresCSV_CRLF(t *testing.T) {
	imp, st, _ := newTestImporter(t)
	ctx := context.Background()

	report, err := imp.ImportGenresCSV(ctx, strings.NewReader("name\r\nHorror\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	_, err = st.GetGenreByName(ctx, "Horror")
	require.NoError(t, err)
}

func TestImportGenresCSV_EmptyFile(t *testing.T) {
	imp, _, _ := newTestImporter(t)

	_, err := imp.ImportGenresCSV(context.Background(), strings.NewReader("   \n \n"))
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.Error(), "Empty file")
}
