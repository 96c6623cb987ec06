package recommend

import (
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
)

// BookSignal is the slice of a catalog book the scorer looks at.
type BookSignal struct {
	ID       int64
	Genres   []string
	Author   string
	Rating   float64
	Liked    float64
	Language string
}

// SignalFromBook extracts the scoring inputs from a catalog book.
func SignalFromBook(b *domain.Book) BookSignal {
	return BookSignal{
		ID:       b.ID,
		Genres:   b.Genres,
		Author:   b.Author,
		Rating:   b.Rating,
		Liked:    b.LikedPercentage,
		Language: b.Language,
	}
}

// Signals converts a book list into scoring signals, preserving order.
func Signals(books []*domain.Book) []BookSignal {
	signals := make([]BookSignal, len(books))
	for i, b := range books {
		signals[i] = SignalFromBook(b)
	}
	return signals
}

// UserSignal is the taste profile a recommendation request scores against.
// SavedIDs is the raw saved list: ids that no longer resolve to a catalog
// book still count as saved for exclusion, they just contribute no taste
// signal. SavedAuthors and SavedGenres are derived from the books that did
// resolve.
type UserSignal struct {
	FavoriteGenres    []string
	SavedIDs          []int64
	SavedAuthors      []string
	SavedGenres       []string
	PreferredLanguage string
}

// BuildUserSignal assembles the scoring inputs for one user. savedBooks are
// the user's saved ids resolved against the catalog; the caller passes
// whatever subset still exists.
func BuildUserSignal(favoriteGenres []string, savedIDs []int64, savedBooks []BookSignal, preferredLanguage string) UserSignal {
	var authors, genres []string
	seenAuthors := make(map[string]struct{})
	seenGenres := make(map[string]struct{})
	for _, b := range savedBooks {
		if b.Author != "" {
			if _, ok := seenAuthors[b.Author]; !ok {
				seenAuthors[b.Author] = struct{}{}
				authors = append(authors, b.Author)
			}
		}
		for _, g := range b.Genres {
			if _, ok := seenGenres[g]; !ok {
				seenGenres[g] = struct{}{}
				genres = append(genres, g)
			}
		}
	}

	return UserSignal{
		FavoriteGenres:    favoriteGenres,
		SavedIDs:          savedIDs,
		SavedAuthors:      authors,
		SavedGenres:       genres,
		PreferredLanguage: normalizeLanguage(preferredLanguage),
	}
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
