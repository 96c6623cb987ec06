// Package domain contains the core business entities for the BookHive catalog.
package domain

import (
	"strings"
	"time"
)

// DefaultLanguage is assigned to books and reader profiles that don't
// specify one.
const DefaultLanguage = "English"

// Book represents a catalog entry.
type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Description     string     `json:"description,omitempty"`
	CoverImage      string     `json:"cover_image,omitempty"` // external URL; uploaded covers live on disk
	CoverBlurHash   string     `json:"cover_blurhash,omitempty"`
	PublishDate     *time.Time `json:"publish_date,omitempty"`
	Rating          float64    `json:"rating"`           // 0..5
	LikedPercentage float64    `json:"liked_percentage"` // 0..100
	Genres          []string   `json:"genres"`
	Language        string     `json:"language"`
	PageCount       int        `json:"page_count"`
	IsFree          bool       `json:"is_free"`
	Publisher       string     `json:"publisher,omitempty"`
	BuyNowURL       string     `json:"buy_now_url,omitempty"`
	PreviewURL      string     `json:"preview_url,omitempty"`
	DownloadURL     string     `json:"download_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PublishYear returns the year of publication, or 0 when the date is unset.
func (b *Book) PublishYear() int {
	if b.PublishDate == nil {
		return 0
	}
	return b.PublishDate.Year()
}

// HasGenre reports whether the book carries the named genre.
// Matching ignores case and surrounding whitespace.
func (b *Book) HasGenre(name string) bool {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return false
	}
	for _, g := range b.Genres {
		if strings.ToLower(strings.TrimSpace(g)) == want {
			return true
		}
	}
	return false
}

// CleanGenres drops empty entries and trims whitespace from the genre list.
// CSV imports and hand-typed admin input both produce ragged lists.
func (b *Book) CleanGenres() {
	cleaned := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		if g = strings.TrimSpace(g); g != "" {
			cleaned = append(cleaned, g)
		}
	}
	b.Genres = cleaned
}
