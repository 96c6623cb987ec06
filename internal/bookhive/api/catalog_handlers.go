package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exploreBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/explore",
		Summary:     "Explore the catalog",
		Description: "Returns one page of the catalog filtered by author, ISBN, genre, publication year, publisher and language",
		Tags:        []string{"Catalog"},
	}, s.handleExploreBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/search",
		Summary:     "Search books",
		Description: "Full-text search over titles and authors; empty or unmatched queries return an empty list",
		Tags:        []string{"Catalog"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFilterOptions",
		Method:      http.MethodGet,
		Path:        "/api/books/filter-options",
		Summary:     "Explore filter options",
		Description: "Returns the distinct authors, languages and genres available for filtering",
		Tags:        []string{"Catalog"},
	}, s.handleGetFilterOptions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Returns one book by id",
		Tags:        []string{"Catalog"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/genres",
		Summary:     "List genres",
		Description: "Returns all genres ordered by name",
		Tags:        []string{"Catalog"},
	}, s.handleListGenres)
}

// === DTOs ===

// GetBookInput identifies the book to fetch.
type GetBookInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book record.
type BookOutput struct {
	Body *domain.Book
}

// ExploreInput carries the explore filters and paging window.
// Numeric fields arrive as raw strings so malformed values fall back to
// defaults instead of failing the request.
type ExploreInput struct {
	Author        string `query:"author" doc:"Substring filter on author"`
	ISBN          string `query:"isbn" doc:"Substring filter on ISBN"`
	Genre         string `query:"genre" doc:"Substring filter on genre names"`
	PublishedYear string `query:"published_year" doc:"Exact publication year"`
	Publisher     string `query:"publisher" doc:"Substring filter on publisher"`
	Language      string `query:"language" doc:"Substring filter on language"`
	ExcludeIDs    string `query:"exclude_ids" doc:"Comma-separated book ids to exclude"`
	Offset        string `query:"offset" doc:"Paging offset (default 0)"`
	Limit         string `query:"limit" doc:"Page size (default 4)"`
}

// ExploreOutput wraps one explore result page.
type ExploreOutput struct {
	Body *service.ExploreResult
}

// SearchInput carries the free-text search query.
type SearchInput struct {
	Query string `query:"q" doc:"Search query"`
}

// FilterOptionsOutput wraps the distinct filter values.
type FilterOptionsOutput struct {
	Body *service.FilterOptions
}

// === Handlers ===

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.catalog.BookDetail(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleExploreBooks(ctx context.Context, input *ExploreInput) (*ExploreOutput, error) {
	result, err := s.catalog.Explore(ctx, store.ExploreQuery{
		Author:      input.Author,
		ISBN:        input.ISBN,
		Genre:       input.Genre,
		PublishYear: input.PublishedYear,
		Publisher:   input.Publisher,
		Language:    input.Language,
		ExcludeIDs:  parseIDList(input.ExcludeIDs),
		Offset:      intQuery(input.Offset, 0),
		Limit:       intQuery(input.Limit, 0),
	})
	if err != nil {
		return nil, err
	}
	return &ExploreOutput{Body: result}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchInput) (*BookListOutput, error) {
	books, err := s.catalog.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: books}, nil
}

func (s *Server) handleGetFilterOptions(ctx context.Context, _ *struct{}) (*FilterOptionsOutput, error) {
	options, err := s.catalog.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &FilterOptionsOutput{Body: options}, nil
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	genres, err := s.catalog.Genres(ctx)
	if err != nil {
		return nil, err
	}
	return &GenreListOutput{Body: genres}, nil
}
