package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBook_PublishYear(t *testing.T) {
	date := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)

	book := &Book{PublishDate: &date}
	assert.Equal(t, 1965, book.PublishYear())

	unset := &Book{}
	assert.Equal(t, 0, unset.PublishYear())
}

func TestBook_HasGenre(t *testing.T) {
	book := &Book{Genres: []string{"Science Fiction", " Fantasy "}}

	assert.True(t, book.HasGenre("science fiction"))
	assert.True(t, book.HasGenre("FANTASY"))
	assert.False(t, book.HasGenre("Horror"))
	assert.False(t, book.HasGenre(""))
}

func TestBook_CleanGenres(t *testing.T) {
	book := &Book{Genres: []string{" Fantasy ", "", "  ", "Horror"}}

	book.CleanGenres()

	assert.Equal(t, []string{"Fantasy", "Horror"}, book.Genres)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Science Fiction", "science-fiction"},
		{"LitRPG", "litrpg"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"Children's", "children-s"},
		{"  Épée & Sorcery  ", "epee-sorcery"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
