package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/recommend"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// LibraryService covers the reader's saved list and personalized
// recommendations.
type LibraryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(store *store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: store, logger: logger}
}

// SavedBooks returns the user's saved books in save order, most recent
// last. Ids pointing at deleted books are skipped.
func (s *LibraryService) SavedBooks(ctx context.Context, userID int64) ([]*domain.Book, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	migrateLegacySaved(ctx, s.store, s.logger, user)

	books, err := s.store.GetBooksByIDs(ctx, user.SavedBookIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch saved books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return orderBooksByIDs(books, user.SavedBookIDs), nil
}

// ToggleSaveResponse reports which way the toggle went and the
// resulting saved list.
type ToggleSaveResponse struct {
	Message    string  `json:"message"`
	SavedBooks []int64 `json:"saved_books"`
}

// ToggleSave adds the book to the user's saved list, or removes it when
// already present.
func (s *LibraryService) ToggleSave(ctx context.Context, userID, bookID int64) (*ToggleSaveResponse, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, domainerrors.NotFound("Book not found")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	migrateLegacySaved(ctx, s.store, s.logger, user)

	added := user.ToggleSaved(bookID)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	message := "Book removed from saved list"
	if added {
		message = "Book added to saved list"
	}

	s.logger.Info("saved list toggled",
		"user_id", userID, "book_id", bookID, "added", added)

	saved := user.SavedBookIDs
	if saved == nil {
		saved = []int64{}
	}

	return &ToggleSaveResponse{Message: message, SavedBooks: saved}, nil
}

// Recommended ranks the catalog for the user and returns the top
// matches. Saved books are excluded from the result.
func (s *LibraryService) Recommended(ctx context.Context, userID int64, limit int) ([]*domain.Book, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	migrateLegacySaved(ctx, s.store, s.logger, user)

	// Saved books feed the taste signal; ids pointing at deleted books
	// resolve to nothing and contribute no signal.
	savedBooks, err := s.store.GetBooksByIDs(ctx, user.SavedBookIDs)
	if err != nil {
		return nil, fmt.Errorf("load saved books: %w", err)
	}

	// Candidates are the catalog minus the saved list, in stable id order.
	candidates, err := s.store.ListBooksExcluding(ctx, user.SavedBookIDs)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	signal := recommend.BuildUserSignal(
		user.FavoriteGenres, user.SavedBookIDs, recommend.Signals(savedBooks), user.PreferredLanguage)

	ids := recommend.Recommend(signal, recommend.Signals(candidates), limit)

	byID := make(map[int64]*domain.Book, len(candidates))
	for _, b := range candidates {
		byID[b.ID] = b
	}
	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}
