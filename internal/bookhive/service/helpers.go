package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
)

// migrateLegacySaved copies the relation-era saved list onto the user the
// first time the saved list is touched. Persisting is best effort: the
// in-memory copy is what the caller reads, and a failed write just means
// the migration reruns on the next touch.
func migrateLegacySaved(ctx context.Context, st *store.Store, logger *slog.Logger, user *domain.User) {
	if !user.NeedsLegacyMigration() {
		return
	}
	user.MigrateLegacySaved()
	if err := st.UpdateUser(ctx, user); err != nil {
		logger.Warn("persist legacy saved migration", "user_id", user.ID, "error", err)
	}
}

// orderBooksByIDs reorders books to follow the id list. Books not named
// in the list keep their relative order at the end.
func orderBooksByIDs(books []*domain.Book, ids []int64) []*domain.Book {
	if len(books) == 0 || len(ids) == 0 {
		return books
	}

	pos := make(map[int64]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	ordered := make([]*domain.Book, len(books))
	copy(ordered, books)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, iOK := pos[ordered[i].ID]
		pj, jOK := pos[ordered[j].ID]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		default:
			return false
		}
	})
	return ordered
}

// resolveFavoriteGenres maps the user's favorite genre names onto genre
// records, sorted by name. Names without a matching record are skipped;
// they can linger after an admin deletes a genre.
func resolveFavoriteGenres(ctx context.Context, st *store.Store, names []string) ([]*domain.Genre, error) {
	genres := make([]*domain.Genre, 0, len(names))
	for _, name := range names {
		genre, err := st.GetGenreByName(ctx, name)
		if errors.Is(err, domainerrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	return genres, nil
}

// userDetail assembles the profile payload for a user, running the lazy
// legacy-saved migration when needed.
func userDetail(ctx context.Context, st *store.Store, logger *slog.Logger, user *domain.User) (*UserDetail, error) {
	migrateLegacySaved(ctx, st, logger, user)

	genres, err := resolveFavoriteGenres(ctx, st, user.FavoriteGenres)
	if err != nil {
		return nil, err
	}

	saved := user.SavedBookIDs
	if saved == nil {
		saved = []int64{}
	}

	return &UserDetail{
		ID:                   user.ID,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Username:             user.Username,
		Email:                user.Email,
		IsAdmin:              user.IsAdmin,
		FavoriteGenres:       genres,
		PreferredLanguage:    user.PreferredLanguage,
		NotificationsEnabled: user.NotificationsEnabled,
		SavedBooks:           saved,
		CreatedAt:            user.CreatedAt,
		UpdatedAt:            user.UpdatedAt,
	}, nil
}
