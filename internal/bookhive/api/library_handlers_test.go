package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
)

func decodeBooks(t *testing.T, w *httptest.ResponseRecorder) []*domain.Book {
	t.Helper()

	var books []*domain.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	return books
}

// seedCatalog creates enough books that the default recommendation
// count is observable against the catalog size.
func (ts *testServer) seedCatalog(t *testing.T) {
	t.Helper()

	ts.seedBook(t, "A Wizard of Earthsea", "Ursula K. Le Guin", "9780547773742", []string{"Fantasy"}, 4.8)
	ts.seedBook(t, "The Tombs of Atuan", "Ursula K. Le Guin", "9780689845369", []string{"Fantasy"}, 4.5)
	ts.seedBook(t, "The Farthest Shore", "Ursula K. Le Guin", "9780689845345", []string{"Fantasy"}, 3.9)
	ts.seedBook(t, "The Big Sleep", "Raymond Chandler", "9780394758282", []string{"Mystery"}, 4.9)
	ts.seedBook(t, "The Long Goodbye", "Raymond Chandler", "9780394757681", []string{"Mystery"}, 4.2)
	ts.seedBook(t, "Gaudy Night", "Dorothy L. Sayers", "9780062196538", []string{"Mystery"}, 4.1)
}

func TestRecommended_UnparseableLimitFallsBackToDefault(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog(t)
	token := ts.token(t, ts.seedUser(t, "reader@example.com", "reader"))

	w := ts.do(t, http.MethodGet, "/api/books/recommended?limit=abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBooks(t, w), 4)
}

func TestRecommended_MissingLimitFallsBackToDefault(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog(t)
	token := ts.token(t, ts.seedUser(t, "reader@example.com", "reader"))

	w := ts.do(t, http.MethodGet, "/api/books/recommended", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBooks(t, w), 4)
}

func TestRecommended_LimitClamped(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog(t)
	token := ts.token(t, ts.seedUser(t, "reader@example.com", "reader"))

	// Below the minimum clamps to one result.
	w := ts.do(t, http.MethodGet, "/api/books/recommended?limit=-3", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBooks(t, w), 1)

	// Above the maximum yields the whole catalog when it is smaller.
	w = ts.do(t, http.MethodGet, "/api/books/recommended?limit=999", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBooks(t, w), 6)
}

func TestRecommended_ExplicitLimitHonored(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCatalog(t)
	token := ts.token(t, ts.seedUser(t, "reader@example.com", "reader"))

	w := ts.do(t, http.MethodGet, "/api/books/recommended?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBooks(t, w), 2)
}

func TestToggleSave_ReflectedInSavedList(t *testing.T) {
	ts := newTestServer(t)
	book := ts.seedBook(t, "The Big Sleep", "Raymond Chandler", "9780394758282", []string{"Mystery"}, 4.9)
	token := ts.token(t, ts.seedUser(t, "reader@example.com", "reader"))

	w := ts.do(t, http.MethodPost, "/api/books/"+strconv.FormatInt(book.ID, 10)+"/toggle-save", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/books/saved", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	books := decodeBooks(t, w)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)

	// Toggling again removes it.
	w = ts.do(t, http.MethodPost, "/api/books/"+strconv.FormatInt(book.ID, 10)+"/toggle-save", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/books/saved", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBooks(t, w))
}
