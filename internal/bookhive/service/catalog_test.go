package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

func TestBookDetail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	book := env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", []string{"Science Fiction"}, 4.6)

	got, err := svc.BookDetail(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	_, err = svc.BookDetail(ctx, 9999)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Contains(t, err.Error(), "Book not found")
}

func TestExplore(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", []string{"Science Fiction"}, 4.6)
	env.seedBook(t, "Dune Messiah", "Frank Herbert", "9780441172696", []string{"Science Fiction"}, 4.0)
	env.seedBook(t, "Emma", "Jane Austen", "9780141439587", []string{"Romance"}, 4.1)

	t.Run("author filter with paging", func(t *testing.T) {
		result, err := svc.Explore(ctx, store.ExploreQuery{Author: "herbert", Limit: 1})
		require.NoError(t, err)
		require.Len(t, result.Books, 1)
		assert.Equal(t, int64(2), result.TotalCount)
		assert.True(t, result.HasMore)

		result, err = svc.Explore(ctx, store.ExploreQuery{Author: "herbert", Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, result.Books, 1)
		assert.False(t, result.HasMore)
	})

	t.Run("default limit", func(t *testing.T) {
		result, err := svc.Explore(ctx, store.ExploreQuery{})
		require.NoError(t, err)
		assert.Len(t, result.Books, 3)
		assert.Equal(t, int64(3), result.TotalCount)
		assert.False(t, result.HasMore)
	})

	t.Run("no matches", func(t *testing.T) {
		result, err := svc.Explore(ctx, store.ExploreQuery{Author: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, result.Books)
		assert.Empty(t, result.Books)
		assert.Equal(t, int64(0), result.TotalCount)
		assert.False(t, result.HasMore)
	})
}

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()

	books, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSearch_UsesIndex(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	dune := env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", []string{"Science Fiction"}, 4.6)
	emma := env.seedBook(t, "Emma", "Jane Austen", "9780141439587", []string{"Romance"}, 4.1)

	require.NoError(t, env.index.IndexBooks([]*search.Document{
		search.DocumentFromBook(dune),
		search.DocumentFromBook(emma),
	}))

	books, err := svc.Search(ctx, "dune")
	require.NoError(t, err)
	require.NotEmpty(t, books)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestSearch_FallsBackToPrefixScan(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", nil, 4.6)
	env.seedBook(t, "Emma", "Jane Austen", "9780141439587", nil, 4.1)

	// Nothing indexed: the empty index routes the query to the store scan.
	books, err := svc.Search(ctx, "Du")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
}

func TestSearch_OddInputNeverErrors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	book := env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", nil, 4.6)
	require.NoError(t, env.index.IndexBook(search.DocumentFromBook(book)))

	for _, q := range []string{"+", "AND OR", `"unbalanced`, "*:*", "a~~~"} {
		_, err := svc.Search(ctx, q)
		assert.NoError(t, err, "query %q", q)
	}
}

func TestFilterOptions(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	env.seedGenre(t, "Romance")
	env.seedGenre(t, "Science Fiction")
	env.seedBook(t, "Dune", "Frank Herbert", "9780441013593", []string{"Science Fiction"}, 4.6)
	env.seedBook(t, "Emma", "Jane Austen", "9780141439587", []string{"Romance"}, 4.1)

	opts, err := svc.FilterOptions(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Frank Herbert", "Jane Austen"}, opts.Authors)
	assert.Equal(t, []string{"English"}, opts.Languages)
	require.Len(t, opts.Genres, 2)
	assert.Equal(t, "Romance", opts.Genres[0].Name)
	assert.Equal(t, "Science Fiction", opts.Genres[1].Name)
}

func TestGenres(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ctx := context.Background()

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)

	env.seedGenre(t, "Mystery")
	env.seedGenre(t, "Fantasy")

	genres, err = svc.Genres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Fantasy", genres[0].Name)
	assert.Equal(t, "Mystery", genres[1].Name)
}
