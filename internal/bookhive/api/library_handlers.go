package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/recommend"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSavedBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/saved",
		Summary:     "List saved books",
		Description: "Returns the authenticated user's saved books in save order, most recent last",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSavedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleSaveBook",
		Method:      http.MethodPost,
		Path:        "/api/books/{id}/toggle-save",
		Summary:     "Toggle saved book",
		Description: "Adds the book to the saved list, or removes it when already saved",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleSaveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendedBooks",
		Method:      http.MethodGet,
		Path:        "/api/books/recommended",
		Summary:     "Recommended books",
		Description: "Content-based recommendations from favorite genres, saved books, ratings and language preference",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendedBooks)
}

// === DTOs ===

// BookListOutput wraps a plain list of book records.
type BookListOutput struct {
	Body []*domain.Book
}

// ToggleSaveInput identifies the book to toggle.
type ToggleSaveInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// ToggleSaveOutput wraps the toggle result.
type ToggleSaveOutput struct {
	Body *service.ToggleSaveResponse
}

// RecommendedInput carries the optional result limit.
// The raw string form keeps unparseable input from failing the request.
type RecommendedInput struct {
	Limit string `query:"limit" doc:"Maximum number of recommendations (default 4, clamped to 1-24)"`
}

// === Handlers ===

func (s *Server) handleGetSavedBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.library.SavedBooks(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: books}, nil
}

func (s *Server) handleToggleSaveBook(ctx context.Context, input *ToggleSaveInput) (*ToggleSaveOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.library.ToggleSave(ctx, claims.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleSaveOutput{Body: resp}, nil
}

func (s *Server) handleGetRecommendedBooks(ctx context.Context, input *RecommendedInput) (*BookListOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	limit := intQuery(input.Limit, recommend.DefaultLimit)

	books, err := s.library.Recommended(ctx, claims.UserID, limit)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: books}, nil
}
