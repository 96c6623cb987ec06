package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/api/users/me",
		Summary:     "Get my profile",
		Description: "Returns the authenticated user's profile with resolved favorite genres and saved book ids",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMe",
		Method:      http.MethodPatch,
		Path:        "/api/users/me",
		Summary:     "Update my profile",
		Description: "Applies a partial update to name, preferred language or notification settings",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFavoriteGenres",
		Method:      http.MethodGet,
		Path:        "/api/users/me/genres",
		Summary:     "List favorite genres",
		Description: "Returns the authenticated user's favorite genres ordered by name",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFavoriteGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "setFavoriteGenres",
		Method:      http.MethodPut,
		Path:        "/api/users/me/genres",
		Summary:     "Replace favorite genres",
		Description: "Replaces the favorite genre set with the given names; unknown names are dropped",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetFavoriteGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFavoriteGenre",
		Method:      http.MethodPost,
		Path:        "/api/users/me/genres",
		Summary:     "Add favorite genre",
		Description: "Adds one genre to the favorites by id or by name, creating the genre when a new name is given",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddFavoriteGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFavoriteGenre",
		Method:      http.MethodDelete,
		Path:        "/api/users/me/genres/{name}",
		Summary:     "Remove favorite genre",
		Description: "Removes one genre from the favorites by name",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFavoriteGenre)
}

// === DTOs ===

// UserDetailOutput wraps a resolved user profile.
type UserDetailOutput struct {
	Body *service.UserDetail
}

// UpdateMeInput wraps the partial profile update for Huma.
type UpdateMeInput struct {
	Body service.UpdateProfileRequest
}

// GenreListOutput wraps a list of genre records.
type GenreListOutput struct {
	Body []*domain.Genre
}

// SetFavoriteGenresRequest is the request body for replacing the favorite set.
type SetFavoriteGenresRequest struct {
	Genres []string `json:"genres" validate:"required,min=1,dive,max=100" doc:"Genre names to keep as favorites"`
}

// SetFavoriteGenresInput wraps the replace request for Huma.
type SetFavoriteGenresInput struct {
	Body SetFavoriteGenresRequest
}

// PreferencesOutput wraps the preferences update acknowledgement.
type PreferencesOutput struct {
	Body *service.UpdatePreferencesResponse
}

// AddFavoriteGenreInput wraps the add request for Huma.
type AddFavoriteGenreInput struct {
	Body service.AddFavoriteGenreRequest
}

// GenreOutput wraps a single genre record.
type GenreOutput struct {
	Body *domain.Genre
}

// RemoveFavoriteGenreInput identifies the genre to remove by name.
type RemoveFavoriteGenreInput struct {
	Name string `path:"name" doc:"Genre name"`
}

// RemovedGenreResponse echoes the genre that was removed.
type RemovedGenreResponse struct {
	Removed *domain.Genre `json:"removed" doc:"The genre that was removed from favorites"`
}

// RemovedGenreOutput wraps the removal response.
type RemovedGenreOutput struct {
	Body RemovedGenreResponse
}

// === Handlers ===

func (s *Server) handleGetMe(ctx context.Context, _ *struct{}) (*UserDetailOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.profile.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &UserDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateMe(ctx context.Context, input *UpdateMeInput) (*UserDetailOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.profile.UpdateProfile(ctx, claims.UserID, &input.Body)
	if err != nil {
		return nil, err
	}
	return &UserDetailOutput{Body: detail}, nil
}

func (s *Server) handleGetFavoriteGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	genres, err := s.profile.FavoriteGenres(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &GenreListOutput{Body: genres}, nil
}

func (s *Server) handleSetFavoriteGenres(ctx context.Context, input *SetFavoriteGenresInput) (*PreferencesOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.profile.SetFavoriteGenres(ctx, claims.UserID, input.Body.Genres)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: resp}, nil
}

func (s *Server) handleAddFavoriteGenre(ctx context.Context, input *AddFavoriteGenreInput) (*GenreOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	genre, err := s.profile.AddFavoriteGenre(ctx, claims.UserID, &input.Body)
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: genre}, nil
}

func (s *Server) handleRemoveFavoriteGenre(ctx context.Context, input *RemoveFavoriteGenreInput) (*RemovedGenreOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	genre, err := s.profile.RemoveFavoriteGenre(ctx, claims.UserID, input.Name)
	if err != nil {
		return nil, err
	}
	return &RemovedGenreOutput{Body: RemovedGenreResponse{Removed: genre}}, nil
}
