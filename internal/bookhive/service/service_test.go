package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/domain"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/importer"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/session"
)

// testEnv wires real stores against temp directories: sqlite for the
// catalog, badger for sessions, bleve for search.
type testEnv struct {
	store    *store.Store
	sessions *session.Store
	index    *search.SearchIndex
	tokens   *auth.TokenService
	logger   *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.New(filepath.Join(t.TempDir(), "sessions"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	return &testEnv{
		store:    st,
		sessions: sessions,
		index:    index,
		tokens:   tokens,
		logger:   logger,
	}
}

func (e *testEnv) sessionService() *SessionService {
	return NewSessionService(e.store, e.sessions, e.tokens, e.logger)
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.store, e.sessionService(), e.sessions, e.logger)
}

func (e *testEnv) profileService() *ProfileService {
	return NewProfileService(e.store, e.logger)
}

func (e *testEnv) libraryService() *LibraryService {
	return NewLibraryService(e.store, e.logger)
}

func (e *testEnv) catalogService() *CatalogService {
	return NewCatalogService(e.store, e.index, e.logger)
}

func (e *testEnv) adminService(t *testing.T) *AdminService {
	t.Helper()

	storage, err := covers.NewStorage(t.TempDir())
	require.NoError(t, err)

	imp := importer.New(e.store, e.index, e.logger)
	return NewAdminService(e.store, e.index, imp, covers.NewProcessor(storage, e.logger), storage, e.logger)
}

func (e *testEnv) seedUser(t *testing.T, email, username string) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	u := &domain.User{
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		IsActive:          true,
		PreferredLanguage: domain.DefaultLanguage,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) seedBook(t *testing.T, title, author, isbn string, genres []string, rating float64) *domain.Book {
	t.Helper()

	b := &domain.Book{
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Genres:   genres,
		Rating:   rating,
		Language: domain.DefaultLanguage,
	}
	require.NoError(t, e.store.CreateBook(context.Background(), b))
	return b
}

func (e *testEnv) seedGenre(t *testing.T, name string) *domain.Genre {
	t.Helper()

	g := &domain.Genre{Name: name, Slug: domain.Slugify(name)}
	require.NoError(t, e.store.CreateGenre(context.Background(), g))
	return g
}
