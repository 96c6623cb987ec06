package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/api"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/importer"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/config"
	"github.com/Sanjay-nithin/campuscore-server/internal/logger"
)

// BookhiveStoreHandle wraps the catalog store with shutdown capability.
type BookhiveStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *BookhiveStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideBookhiveStore provides the sqlite catalog store.
func ProvideBookhiveStore(i do.Injector) (*BookhiveStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.Data.DBPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Data.DBPath)

	return &BookhiveStoreHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BaseDir,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideCoverStorage provides on-disk cover image storage.
func ProvideCoverStorage(i do.Injector) (*covers.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return covers.NewStorage(cfg.Data.BaseDir)
}

// ProvideCoverProcessor provides the cover resize and blurhash pipeline.
func ProvideCoverProcessor(i do.Injector) (*covers.Processor, error) {
	storage := do.MustInvoke[*covers.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	return covers.NewProcessor(storage, log.Logger), nil
}

// ProvideImporter provides the CSV catalog importer.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.New(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ImportWatcherHandle wraps the import drop-directory watcher with its
// context for lifecycle management. The watcher is nil when disabled.
type ImportWatcherHandle struct {
	*importer.DirWatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImportWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

// ProvideImportWatcher provides the drop-directory watcher when enabled.
func ProvideImportWatcher(i do.Injector) (*ImportWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Import.WatchEnabled {
		log.Info("Import watcher disabled by configuration")
		return &ImportWatcherHandle{}, nil
	}

	imp := do.MustInvoke[*importer.Importer](i)

	w, err := importer.NewDirWatcher(imp, cfg.Import.WatchDir, 0, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Import watcher stopped", "error", err)
		}
	}()

	log.Info("Import watcher started", "dir", cfg.Import.WatchDir)

	return &ImportWatcherHandle{DirWatcher: w, cancel: cancel}, nil
}

// ProvideBookhiveSessionService provides the BookHive session service.
func ProvideBookhiveSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, sessions.Store, tokens, log.Logger), nil
}

// BookhiveAuthHandle wraps the auth service so its rate limiters stop on shutdown.
type BookhiveAuthHandle struct {
	*service.AuthService
}

// Shutdown implements do.Shutdownable.
func (h *BookhiveAuthHandle) Shutdown() error {
	h.AuthService.Close()
	return nil
}

// ProvideBookhiveAuthService provides the BookHive authentication service.
func ProvideBookhiveAuthService(i do.Injector) (*BookhiveAuthHandle, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAuthService(storeHandle.Store, sessionService, sessions.Store, log.Logger)
	return &BookhiveAuthHandle{AuthService: svc}, nil
}

// ProvideProfileService provides the user profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, log.Logger), nil
}

// ProvideLibraryService provides the personal library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, log.Logger), nil
}

// ProvideCatalogService provides the catalog browse, search, and
// recommendation service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.SearchIndex, log.Logger), nil
}

// ProvideBookhiveAdminService provides the BookHive admin service.
func ProvideBookhiveAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	imp := do.MustInvoke[*importer.Importer](i)
	coverProcessor := do.MustInvoke[*covers.Processor](i)
	coverStorage := do.MustInvoke[*covers.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, indexHandle.SearchIndex, imp, coverProcessor, coverStorage, log.Logger), nil
}

// BookhiveServerHandle wraps the BookHive http.Server with Shutdownable.
type BookhiveServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *BookhiveServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideBookhiveServer provides the BookHive HTTP server.
func ProvideBookhiveServer(i do.Injector) (*BookhiveServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	coverStorage := do.MustInvoke[*covers.Storage](i)

	authHandle := do.MustInvoke[*BookhiveAuthHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	libraryService := do.MustInvoke[*service.LibraryService](i)
	catalogService := do.MustInvoke[*service.CatalogService](i)
	adminService := do.MustInvoke[*service.AdminService](i)

	handler := api.NewServer(
		storeHandle.Store,
		indexHandle.SearchIndex,
		authHandle.AuthService,
		profileService,
		libraryService,
		catalogService,
		adminService,
		tokens,
		coverStorage,
		cfg.Server.CORSOrigins,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &BookhiveServerHandle{Server: srv}, nil
}

// TriggerSearchBackfillIfNeeded reindexes the catalog when the search
// index is empty but books exist, which happens after a mapping version
// bump or a deleted index directory. Should be called after all services
// are wired.
func TriggerSearchBackfillIfNeeded(i do.Injector) {
	storeHandle := do.MustInvoke[*BookhiveStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	books, err := storeHandle.ListBooks(ctx)
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", len(books),
	)

	go func() {
		docs := make([]*search.Document, 0, len(books))
		for _, b := range books {
			docs = append(docs, search.DocumentFromBook(b))
		}
		if err := indexHandle.IndexBooks(docs); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
