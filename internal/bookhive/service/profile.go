package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// ProfileService manages the signed-in reader's profile and genre
// preferences.
type ProfileService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// UserDetail is the profile payload served to clients. Favorite genres
// come back as full records, the saved list as book ids.
type UserDetail struct {
	ID                   int64           `json:"id"`
	FirstName            string          `json:"first_name"`
	LastName             string          `json:"last_name"`
	Username             string          `json:"username"`
	Email                string          `json:"email"`
	IsAdmin              bool            `json:"is_admin"`
	FavoriteGenres       []*domain.Genre `json:"favorite_genres"`
	PreferredLanguage    string          `json:"preferred_language"`
	NotificationsEnabled bool            `json:"notifications_enabled"`
	SavedBooks           []int64         `json:"saved_books"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Me returns the profile for a user id.
func (s *ProfileService) Me(ctx context.Context, userID int64) (*UserDetail, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userDetail(ctx, s.store, s.logger, user)
}

// UpdateProfileRequest patches profile fields. Nil fields are untouched.
type UpdateProfileRequest struct {
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	PreferredLanguage    *string `json:"preferred_language,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

// UpdateProfile applies a partial profile update and returns the fresh
// profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*UserDetail, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.PreferredLanguage != nil {
		lang := strings.TrimSpace(*req.PreferredLanguage)
		if lang == "" {
			lang = domain.DefaultLanguage
		}
		user.PreferredLanguage = lang
	}
	if req.NotificationsEnabled != nil {
		user.NotificationsEnabled = *req.NotificationsEnabled
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("profile updated", "user_id", user.ID)

	return userDetail(ctx, s.store, s.logger, user)
}

// FavoriteGenres returns the user's favorite genres as records, ordered
// by name.
func (s *ProfileService) FavoriteGenres(ctx context.Context, userID int64) ([]*domain.Genre, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return resolveFavoriteGenres(ctx, s.store, user.FavoriteGenres)
}

// UpdatePreferencesResponse acknowledges a replaced preference set.
type UpdatePreferencesResponse struct {
	Detail string `json:"detail"`
}

// SetFavoriteGenres replaces the user's favorite genres with the named
// set. Names without a matching genre record are dropped silently, the
// same treatment unknown names got from the onboarding screen this
// backs.
func (s *ProfileService) SetFavoriteGenres(ctx context.Context, userID int64, names []string) (*UpdatePreferencesResponse, error) {
	if len(names) == 0 {
		return nil, domainerrors.Validation("Provide a non-empty list of genres")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		genre, err := s.store.GetGenreByName(ctx, name)
		if err != nil {
			continue
		}
		seen[name] = true
		kept = append(kept, genre.Name)
	}

	user.FavoriteGenres = kept
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("preferences updated", "user_id", user.ID, "genres", len(kept))

	return &UpdatePreferencesResponse{Detail: "Preferences updated successfully."}, nil
}

// AddFavoriteGenreRequest names the genre to add, by id or by name.
// Adding by name creates the genre when it does not exist yet.
type AddFavoriteGenreRequest struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// AddFavoriteGenre adds one genre to the user's favorites and returns
// the genre record.
func (s *ProfileService) AddFavoriteGenre(ctx context.Context, userID int64, req *AddFavoriteGenreRequest) (*domain.Genre, error) {
	name := strings.TrimSpace(req.Name)
	if req.ID == nil && name == "" {
		return nil, domainerrors.Validation("Provide either id or name for the genre.")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var genre *domain.Genre
	if req.ID != nil {
		genre, err = s.store.GetGenre(ctx, *req.ID)
		if err != nil {
			return nil, domainerrors.NotFound("Genre not found")
		}
	} else {
		genre, _, err = s.store.GetOrCreateGenre(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get or create genre: %w", err)
		}
	}

	if user.AddFavoriteGenre(genre.Name) {
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return genre, nil
}

// RemoveFavoriteGenre takes one genre off the user's favorites and
// returns the removed record. Removing a genre the user never had is a
// no-op, matching set semantics.
func (s *ProfileService) RemoveFavoriteGenre(ctx context.Context, userID int64, name string) (*domain.Genre, error) {
	genre, err := s.store.GetGenreByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, domainerrors.NotFound("Genre not found")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.RemoveFavoriteGenre(genre.Name) {
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return genre, nil
}
