package domain

import (
	"slices"
	"strings"
	"time"
)

// User represents a reader account.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"` // argon2id encoded, never serialized
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`

	// FavoriteGenres holds genre names the reader picked during onboarding.
	FavoriteGenres []string `json:"favorite_genres"`

	// SavedBookIDs is the reader's saved list in save order, most recent last.
	SavedBookIDs []int64 `json:"saved_book_ids"`

	// LegacySavedIDs carries saved books from the relation-based schema that
	// predates SavedBookIDs. It is copied into SavedBookIDs the first time the
	// saved list is touched and never written again.
	LegacySavedIDs []int64 `json:"-"`

	PreferredLanguage    string    `json:"preferred_language"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// FullName composes the user's display name from first and last names,
// falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasSaved reports whether the book is on the saved list.
func (u *User) HasSaved(bookID int64) bool {
	return slices.Contains(u.SavedBookIDs, bookID)
}

// ToggleSaved adds the book to the saved list or removes it if present.
// Returns true when the book was added. Adding dedupes, so a list that
// somehow picked up duplicates heals on the next toggle.
func (u *User) ToggleSaved(bookID int64) (added bool) {
	if u.HasSaved(bookID) {
		kept := make([]int64, 0, len(u.SavedBookIDs))
		for _, id := range u.SavedBookIDs {
			if id != bookID {
				kept = append(kept, id)
			}
		}
		u.SavedBookIDs = kept
		return false
	}

	u.SavedBookIDs = append(u.SavedBookIDs, bookID)
	u.SavedBookIDs = dedupeIDs(u.SavedBookIDs)
	return true
}

// NeedsLegacyMigration reports whether the saved list should be seeded from
// the legacy relation. True only while SavedBookIDs has never been written.
func (u *User) NeedsLegacyMigration() bool {
	return len(u.SavedBookIDs) == 0 && len(u.LegacySavedIDs) > 0
}

// MigrateLegacySaved copies the legacy saved list into SavedBookIDs verbatim,
// preserving order. Running it twice is harmless: the second copy writes the
// same ids.
func (u *User) MigrateLegacySaved() {
	u.SavedBookIDs = dedupeIDs(slices.Clone(u.LegacySavedIDs))
}

// AddFavoriteGenre appends a genre name, skipping duplicates.
// Returns true when the list changed.
func (u *User) AddFavoriteGenre(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(u.FavoriteGenres, name) {
		return false
	}
	u.FavoriteGenres = append(u.FavoriteGenres, name)
	return true
}

// RemoveFavoriteGenre drops a genre name from the favorites.
// Returns true when the list changed.
func (u *User) RemoveFavoriteGenre(name string) bool {
	name = strings.TrimSpace(name)
	for i, g := range u.FavoriteGenres {
		if g == name {
			u.FavoriteGenres = append(u.FavoriteGenres[:i], u.FavoriteGenres[i+1:]...)
			return true
		}
	}
	return false
}

// dedupeIDs removes duplicate ids preserving first-occurrence order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
