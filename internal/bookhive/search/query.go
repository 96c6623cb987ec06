package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query  string // User's search text; empty matches everything
	Limit  int    // Max hits to return (default 20)
	Offset int
}

// Result represents the outcome of one search.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching book. Callers resolve the full record from the
// store by ID; the stored title and author are enough for logging and
// lightweight displays.
type Hit struct {
	ID     int64   `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author,omitempty"`
}

// Search executes a relevance-ranked query against the book index.
func (s *SearchIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchQuery := buildSearchQuery(params.Query)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, params.Offset, false)
	searchRequest.Fields = []string{"title", "author"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			// Key from an older mapping; skip rather than fail the search.
			s.logger.Warn("skipping hit with non-numeric key", "key", hit.ID)
			continue
		}

		searchHit := Hit{ID: id, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query for the given text.
//
// Titles outrank authors, a fuzzy title match catches typos, and prefix
// matches on both fields serve as-you-type lookups.
func buildSearchQuery(text string) query.Query {
	if text == "" {
		return bleve.NewMatchAllQuery()
	}

	textQueries := []query.Query{}

	titleMatch := bleve.NewMatchQuery(text)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	textQueries = append(textQueries, titleMatch)

	authorMatch := bleve.NewMatchQuery(text)
	authorMatch.SetField("author")
	authorMatch.SetBoost(1.5)
	textQueries = append(textQueries, authorMatch)

	fuzzyQuery := bleve.NewFuzzyQuery(text)
	fuzzyQuery.SetFuzziness(1)
	fuzzyQuery.SetField("title")
	fuzzyQuery.SetBoost(0.8)
	textQueries = append(textQueries, fuzzyQuery)

	// Prefix queries need at least 2 chars to stay selective.
	if len(text) >= 2 {
		lowered := strings.ToLower(text)

		titlePrefix := bleve.NewPrefixQuery(lowered)
		titlePrefix.SetField("title")
		titlePrefix.SetBoost(0.5)
		textQueries = append(textQueries, titlePrefix)

		authorPrefix := bleve.NewPrefixQuery(lowered)
		authorPrefix.SetField("author")
		authorPrefix.SetBoost(0.5)
		textQueries = append(textQueries, authorPrefix)
	}

	return bleve.NewDisjunctionQuery(textQueries...)
}
