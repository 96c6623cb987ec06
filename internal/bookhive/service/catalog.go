package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

const (
	// defaultExploreLimit keeps the explore grid small; clients page for more.
	defaultExploreLimit = 4
	// searchLimit caps the hits pulled from the index per search.
	searchLimit = 50
)

// CatalogService serves the public browse surface: book details,
// explore filters, full-text search and filter options.
type CatalogService struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *store.Store, index *search.SearchIndex, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, index: index, logger: logger}
}

// BookDetail returns one book by id.
func (s *CatalogService) BookDetail(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, domainerrors.NotFound("Book not found")
	}
	return book, nil
}

// ExploreResult is one page of the filtered catalog.
type ExploreResult struct {
	Books      []*domain.Book `json:"books"`
	HasMore    bool           `json:"has_more"`
	TotalCount int64          `json:"total_count"`
}

// Explore pages through the catalog with the six substring filters.
func (s *CatalogService) Explore(ctx context.Context, q store.ExploreQuery) (*ExploreResult, error) {
	if q.Limit <= 0 {
		q.Limit = defaultExploreLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	books, total, err := s.store.ExploreBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("explore books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return &ExploreResult{
		Books:      books,
		HasMore:    int64(q.Offset+q.Limit) < total,
		TotalCount: total,
	}, nil
}

// Search runs a relevance-ranked query against the book index. An empty
// query returns an empty result, and index trouble falls back to a
// plain prefix scan so search never errors out on the reader.
func (s *CatalogService) Search(ctx context.Context, query string) ([]*domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Book{}, nil
	}

	if count, err := s.index.DocumentCount(); err != nil || count == 0 {
		return s.searchFallback(ctx, query)
	}

	result, err := s.index.Search(ctx, search.Params{Query: query, Limit: searchLimit})
	if err != nil {
		s.logger.Warn("index search failed, using prefix scan", "query", query, "error", err)
		return s.searchFallback(ctx, query)
	}

	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}

	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve search hits: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return orderBooksByIDs(books, ids), nil
}

func (s *CatalogService) searchFallback(ctx context.Context, query string) ([]*domain.Book, error) {
	books, err := s.store.SearchBooksPrefix(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("prefix search: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// FilterOptions holds the choices the explore screen offers.
type FilterOptions struct {
	Authors   []string        `json:"authors"`
	Genres    []*domain.Genre `json:"genres"`
	Languages []string        `json:"languages"`
}

// FilterOptions returns distinct authors (capped), all genres and
// distinct languages for populating explore filters.
func (s *CatalogService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	authors, err := s.store.DistinctAuthors(ctx, 50)
	if err != nil {
		return nil, fmt.Errorf("distinct authors: %w", err)
	}

	genres, err := s.store.ListGenres(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}

	languages, err := s.store.DistinctLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct languages: %w", err)
	}

	if authors == nil {
		authors = []string{}
	}
	if genres == nil {
		genres = []*domain.Genre{}
	}
	if languages == nil {
		languages = []string{}
	}

	return &FilterOptions{Authors: authors, Genres: genres, Languages: languages}, nil
}

// Genres lists every genre, ordered by name.
func (s *CatalogService) Genres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []*domain.Genre{}
	}
	return genres, nil
}
