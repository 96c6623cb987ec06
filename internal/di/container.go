// Package di provides dependency injection configuration for the CampusCore servers.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	bhservice "github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/config"
	"github.com/Sanjay-nithin/campuscore-server/internal/di/providers"
	hfservice "github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/logger"
)

// NewBookhive creates and configures the DI container for the BookHive server.
func NewBookhive() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideBookhiveConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSessionStore)

	// Storage layer
	do.Provide(injector, providers.ProvideBookhiveStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideCoverProcessor)

	// Import pipeline
	do.Provide(injector, providers.ProvideImporter)
	do.Provide(injector, providers.ProvideImportWatcher)

	// Business services
	do.Provide(injector, providers.ProvideBookhiveSessionService)
	do.Provide(injector, providers.ProvideBookhiveAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideBookhiveAdminService)

	// Server
	do.Provide(injector, providers.ProvideBookhiveServer)

	return injector
}

// BootstrapBookhive initializes all BookHive services. This triggers lazy
// initialization of everything the server needs before it accepts traffic.
func BootstrapBookhive(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.SessionStoreHandle](injector)

	_ = do.MustInvoke[*providers.BookhiveStoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*covers.Storage](injector)
	_ = do.MustInvoke[*covers.Processor](injector)

	_ = do.MustInvoke[*bhservice.SessionService](injector)
	_ = do.MustInvoke[*providers.BookhiveAuthHandle](injector)
	_ = do.MustInvoke[*bhservice.ProfileService](injector)
	_ = do.MustInvoke[*bhservice.LibraryService](injector)
	_ = do.MustInvoke[*bhservice.CatalogService](injector)
	_ = do.MustInvoke[*bhservice.AdminService](injector)

	_ = do.MustInvoke[*providers.ImportWatcherHandle](injector)
	_ = do.MustInvoke[*providers.BookhiveServerHandle](injector)

	// Rebuild the search index from the catalog if it came up empty.
	providers.TriggerSearchBackfillIfNeeded(injector)

	return nil
}

// NewHostelflow creates and configures the DI container for the HostelFlow server.
func NewHostelflow() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideHostelflowConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSessionStore)

	// Storage layer
	do.Provide(injector, providers.ProvideHostelflowStore)

	// Business services
	do.Provide(injector, providers.ProvideHostelflowSessionService)
	do.Provide(injector, providers.ProvideHostelflowAuthService)
	do.Provide(injector, providers.ProvideBookingService)
	do.Provide(injector, providers.ProvideProviderService)
	do.Provide(injector, providers.ProvideNotificationService)
	do.Provide(injector, providers.ProvideHostelflowAdminService)

	// Server
	do.Provide(injector, providers.ProvideHostelflowServer)

	return injector
}

// BootstrapHostelflow initializes all HostelFlow services.
func BootstrapHostelflow(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.SessionStoreHandle](injector)

	_ = do.MustInvoke[*providers.HostelflowStoreHandle](injector)

	_ = do.MustInvoke[*hfservice.SessionService](injector)
	_ = do.MustInvoke[*providers.HostelflowAuthHandle](injector)
	_ = do.MustInvoke[*hfservice.BookingService](injector)
	_ = do.MustInvoke[*hfservice.ProviderService](injector)
	_ = do.MustInvoke[*hfservice.NotificationService](injector)
	_ = do.MustInvoke[*hfservice.AdminService](injector)

	_ = do.MustInvoke[*providers.HostelflowServerHandle](injector)

	return nil
}
