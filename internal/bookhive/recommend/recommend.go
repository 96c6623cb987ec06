// Package recommend ranks catalog books against a user's taste profile.
//
// The score blends six signals: overlap with the user's favorite genres,
// overlap with the genres of books they already saved, whether they saved
// the same author before, the book's rating and liked percentage, and a
// language preference match. Users with no signal at all fall back to a
// plain top-rated ranking.
package recommend

import (
	"cmp"
	"slices"
)

// Scoring weights. They sum to 1.0 so scores stay in [0, 1].
const (
	weightFavoriteGenres = 0.40
	weightSavedGenres    = 0.20
	weightAuthor         = 0.15
	weightRating         = 0.15
	weightLiked          = 0.05
	weightLanguage       = 0.05
)

// Bounds on how many recommendations a single request may ask for.
const (
	DefaultLimit = 4
	MinLimit     = 1
	MaxLimit     = 24
)

// Recommend returns the ids of up to limit catalog books ranked for the
// given user, best match first. Saved books never appear in the result.
// Users with neither favorite genres nor saved books get the plain
// top-rated ranking instead of a personalized one.
//
// The output is deterministic for a fixed catalog order: every sort is
// stable, so ties beyond the documented keys keep catalog order.
func Recommend(user UserSignal, catalog []BookSignal, limit int) []int64 {
	limit = clampLimit(limit)

	saved := make(map[int64]struct{}, len(user.SavedIDs))
	for _, id := range user.SavedIDs {
		saved[id] = struct{}{}
	}

	candidates := make([]BookSignal, 0, len(catalog))
	for _, b := range catalog {
		if _, ok := saved[b.ID]; !ok {
			candidates = append(candidates, b)
		}
	}

	// Cold start: nothing to score against.
	if len(user.FavoriteGenres) == 0 && len(user.SavedIDs) == 0 {
		sortByRatingAndLiked(candidates)
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		return signalIDs(candidates)
	}

	sc := newScorer(user)
	scored := make([]scoredBook, len(candidates))
	for i, b := range candidates {
		scored[i] = scoredBook{book: b, score: sc.score(b)}
	}

	// Score decides, raw rating breaks ties.
	slices.SortStableFunc(scored, func(a, b scoredBook) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(b.book.Rating, a.book.Rating)
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	picked := make(map[int64]struct{}, len(scored))
	ids := make([]int64, 0, limit)
	for _, sb := range scored {
		ids = append(ids, sb.book.ID)
		picked[sb.book.ID] = struct{}{}
	}

	// Tiny catalogs can come up short; top up with the best remaining
	// candidates by rating and liked percentage.
	if len(ids) < limit {
		rest := make([]BookSignal, 0, len(candidates)-len(ids))
		for _, b := range candidates {
			if _, ok := picked[b.ID]; !ok {
				rest = append(rest, b)
			}
		}
		sortByRatingAndLiked(rest)
		for _, b := range rest {
			if len(ids) == limit {
				break
			}
			ids = append(ids, b.ID)
		}
	}

	return ids
}

// Score computes the weighted match score of one candidate for a user.
// Recommend applies the same blend; Score is exposed so callers can
// explain why a book ranked where it did.
func Score(user UserSignal, book BookSignal) float64 {
	return newScorer(user).score(book)
}

type scoredBook struct {
	book  BookSignal
	score float64
}

// scorer holds a user's signals in set form so scoring a candidate is a
// handful of lookups.
type scorer struct {
	favoriteGenres map[string]struct{}
	savedAuthors   map[string]struct{}
	savedGenres    map[string]struct{}
	preferredLang  string
}

func newScorer(user UserSignal) *scorer {
	return &scorer{
		favoriteGenres: toSet(user.FavoriteGenres),
		savedAuthors:   toSet(user.SavedAuthors),
		savedGenres:    toSet(user.SavedGenres),
		preferredLang:  normalizeLanguage(user.PreferredLanguage),
	}
}

func (s *scorer) score(b BookSignal) float64 {
	genres := toSet(b.Genres)

	favGenreSim := jaccard(s.favoriteGenres, genres)
	savedGenreSim := jaccard(s.savedGenres, genres)

	var authorMatch float64
	if b.Author != "" {
		if _, ok := s.savedAuthors[b.Author]; ok {
			authorMatch = 1.0
		}
	}

	var langMatch float64
	if s.preferredLang != "" && normalizeLanguage(b.Language) == s.preferredLang {
		langMatch = 1.0
	}

	return weightFavoriteGenres*favGenreSim +
		weightSavedGenres*savedGenreSim +
		weightAuthor*authorMatch +
		weightRating*clamp01(b.Rating/5) +
		weightLiked*clamp01(b.Liked/100) +
		weightLanguage*langMatch
}

// jaccard returns the overlap ratio of two sets: intersection size over
// union size. Two empty sets score 0, not 1.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampLimit(limit int) int {
	return max(MinLimit, min(limit, MaxLimit))
}

// sortByRatingAndLiked orders books best first by rating, then liked
// percentage. Stable, so fully tied books keep catalog order.
func sortByRatingAndLiked(books []BookSignal) {
	slices.SortStableFunc(books, func(a, b BookSignal) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(b.Liked, a.Liked)
	})
}

func signalIDs(books []BookSignal) []int64 {
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
