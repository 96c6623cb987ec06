package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/admin/users",
		Summary:     "List users",
		Description: "Returns every registered user with resolved favorite genres",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Permanently deletes a user account",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBooks",
		Method:      http.MethodGet,
		Path:        "/api/admin/books",
		Summary:     "List books",
		Description: "Returns one page of the catalog, optionally filtered by a search query",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/api/admin/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog and indexes it for search",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBook",
		Method:      http.MethodPatch,
		Path:        "/api/admin/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update to a book and reindexes it",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/admin/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book together with its search entry and cover file",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminAddGenres",
		Method:        http.MethodPost,
		Path:          "/api/admin/genres",
		Summary:       "Add genres",
		Description:   "Creates one genre by name, or several at once via the names list",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminAddGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListGenres",
		Method:      http.MethodGet,
		Path:        "/api/admin/genres",
		Summary:     "List genres",
		Description: "Returns all genres, optionally filtered by a name substring",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminEditGenre",
		Method:      http.MethodPatch,
		Path:        "/api/admin/genres/{id}",
		Summary:     "Rename genre",
		Description: "Renames a genre and refreshes its slug",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminEditGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteGenre",
		Method:      http.MethodDelete,
		Path:        "/api/admin/genres/{id}",
		Summary:     "Delete genre",
		Description: "Deletes a genre record",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDashboard",
		Method:      http.MethodGet,
		Path:        "/api/admin/dashboard",
		Summary:     "Dashboard statistics",
		Description: "Returns catalog totals, recent activity and top rated books",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminReindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/admin/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Drops and rebuilds the search index from the catalog",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminReindexSearch)
}

// === DTOs ===

// UserListOutput wraps a list of resolved user profiles.
type UserListOutput struct {
	Body []*service.UserDetail
}

// AdminUserInput identifies the user to operate on.
type AdminUserInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// AdminBooksInput carries the admin book listing parameters.
type AdminBooksInput struct {
	Query  string `query:"q" doc:"Search query across title, author, genres and ISBN"`
	Offset string `query:"offset" doc:"Paging offset (default 0)"`
	Limit  string `query:"limit" doc:"Page size (default 10)"`
}

// AdminBookPageOutput wraps one admin book listing page.
type AdminBookPageOutput struct {
	Body *service.AdminBookPage
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body service.CreateBookRequest
}

// UpdateBookInput wraps the partial update for Huma.
type UpdateBookInput struct {
	ID   int64 `path:"id" doc:"Book ID"`
	Body service.UpdateBookRequest
}

// AdminBookInput identifies the book to operate on.
type AdminBookInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// AddGenresInput wraps the genre creation request for Huma.
type AddGenresInput struct {
	Body service.AddGenresRequest
}

// AddGenresOutput wraps the created/existing name split.
type AddGenresOutput struct {
	Body *service.AddGenresResult
}

// AdminGenresInput carries the optional genre name filter.
type AdminGenresInput struct {
	Query string `query:"q" doc:"Name substring filter"`
}

// EditGenreRequest is the request body for renaming a genre.
type EditGenreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100" doc:"New genre name"`
}

// EditGenreInput wraps the rename request for Huma.
type EditGenreInput struct {
	ID   int64 `path:"id" doc:"Genre ID"`
	Body EditGenreRequest
}

// AdminGenreInput identifies the genre to operate on.
type AdminGenreInput struct {
	ID int64 `path:"id" doc:"Genre ID"`
}

// DeleteGenreOutput wraps the deleted genre acknowledgement.
type DeleteGenreOutput struct {
	Body *service.DeleteGenreResponse
}

// DashboardOutput wraps the dashboard statistics.
type DashboardOutput struct {
	Body *service.DashboardStats
}

// ReindexOutput wraps the reindex result.
type ReindexOutput struct {
	Body *service.ReindexResult
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &UserListOutput{Body: users}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *AdminUserInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	resp, err := s.admin.DeleteUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handleAdminListBooks(ctx context.Context, input *AdminBooksInput) (*AdminBookPageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.admin.Books(ctx, input.Query, intQuery(input.Offset, 0), intQuery(input.Limit, 0))
	if err != nil {
		return nil, err
	}
	return &AdminBookPageOutput{Body: page}, nil
}

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.admin.CreateBook(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.admin.UpdateBook(ctx, input.ID, &input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminDeleteBook(ctx context.Context, input *AdminBookInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	resp, err := s.admin.DeleteBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MessageOutput{Body: *resp}, nil
}

func (s *Server) handleAdminAddGenres(ctx context.Context, input *AddGenresInput) (*AddGenresOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := s.admin.AddGenres(ctx, &input.Body)
	if err != nil {
		return nil, err
	}
	return &AddGenresOutput{Body: result}, nil
}

func (s *Server) handleAdminListGenres(ctx context.Context, input *AdminGenresInput) (*GenreListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	genres, err := s.admin.ListGenres(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &GenreListOutput{Body: genres}, nil
}

func (s *Server) handleAdminEditGenre(ctx context.Context, input *EditGenreInput) (*GenreOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	genre, err := s.admin.EditGenre(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: genre}, nil
}

func (s *Server) handleAdminDeleteGenre(ctx context.Context, input *AdminGenreInput) (*DeleteGenreOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	resp, err := s.admin.DeleteGenre(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteGenreOutput{Body: resp}, nil
}

func (s *Server) handleAdminDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	stats, err := s.admin.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: stats}, nil
}

func (s *Server) handleAdminReindexSearch(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := s.admin.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: result}, nil
}
