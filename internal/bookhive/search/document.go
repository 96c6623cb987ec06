// Package search provides full-text book search using Bleve. Queries match
// titles and authors with boosted relevance, fuzzy matching for typo
// tolerance, and prefix matching for as-you-type lookups.
package search

import (
	"strconv"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
)

// Document is the indexed representation of a catalog book.
//
// Genre names and slugs are denormalized into the document, so a genre
// rename requires reindexing affected books rather than a join at query
// time.
type Document struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	GenreSlugs  []string `json:"genre_slugs,omitempty"`
	Language    string   `json:"language,omitempty"`
	PublishYear int      `json:"publish_year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Key returns the Bleve document key for this book.
func (d *Document) Key() string {
	return strconv.FormatInt(d.ID, 10)
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names as-is (capitalized), but the index
// mapping uses lowercase names, so the conversion is explicit.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.Key(),
		"title":      d.Title,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.PublishYear > 0 {
		m["publish_year"] = d.PublishYear
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// DocumentFromBook converts a catalog book into its indexed form.
func DocumentFromBook(b *domain.Book) *Document {
	b.CleanGenres()
	genres := b.Genres
	slugs := make([]string, 0, len(genres))
	for _, g := range genres {
		if slug := domain.Slugify(g); slug != "" {
			slugs = append(slugs, slug)
		}
	}

	return &Document{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Publisher:   b.Publisher,
		Genres:      genres,
		GenreSlugs:  slugs,
		Language:    b.Language,
		PublishYear: b.PublishYear(),
		Rating:      b.Rating,
		CreatedAt:   b.CreatedAt.UnixMilli(),
		UpdatedAt:   b.UpdatedAt.UnixMilli(),
	}
}
