package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/config"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/api"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
	"github.com/Sanjay-nithin/campuscore-server/internal/logger"
	"github.com/Sanjay-nithin/campuscore-server/internal/validation"
)

// HostelflowStoreHandle wraps the booking store with shutdown capability.
type HostelflowStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *HostelflowStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideHostelflowStore provides the sqlite booking store.
func ProvideHostelflowStore(i do.Injector) (*HostelflowStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.Open(cfg.Data.DBPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Data.DBPath)

	return &HostelflowStoreHandle{Store: db}, nil
}

// ProvideHostelflowSessionService provides the HostelFlow session service.
func ProvideHostelflowSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, sessions.Store, tokens, log.Logger), nil
}

// HostelflowAuthHandle wraps the auth service so its rate limiter stops on shutdown.
type HostelflowAuthHandle struct {
	*service.AuthService
}

// Shutdown implements do.Shutdownable.
func (h *HostelflowAuthHandle) Shutdown() error {
	h.AuthService.Close()
	return nil
}

// ProvideHostelflowAuthService provides the HostelFlow authentication service.
func ProvideHostelflowAuthService(i do.Injector) (*HostelflowAuthHandle, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAuthService(storeHandle.Store, sessionService, log.Logger)
	return &HostelflowAuthHandle{AuthService: svc}, nil
}

// ProvideBookingService provides the resident booking service.
func ProvideBookingService(i do.Injector) (*service.BookingService, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookingService(storeHandle.Store, validation.New(), log.Logger), nil
}

// ProvideProviderService provides the service provider portal service.
func ProvideProviderService(i do.Injector) (*service.ProviderService, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProviderService(storeHandle.Store, log.Logger), nil
}

// ProvideNotificationService provides the notification feed service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Store, log.Logger), nil
}

// ProvideHostelflowAdminService provides the HostelFlow admin service.
func ProvideHostelflowAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, sessionService, log.Logger), nil
}

// HostelflowServerHandle wraps the HostelFlow http.Server with Shutdownable.
type HostelflowServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HostelflowServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHostelflowServer provides the HostelFlow HTTP server.
func ProvideHostelflowServer(i do.Injector) (*HostelflowServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*HostelflowStoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)

	authHandle := do.MustInvoke[*HostelflowAuthHandle](i)
	bookingService := do.MustInvoke[*service.BookingService](i)
	providerService := do.MustInvoke[*service.ProviderService](i)
	notificationService := do.MustInvoke[*service.NotificationService](i)
	adminService := do.MustInvoke[*service.AdminService](i)

	handler := api.NewServer(
		storeHandle.Store,
		authHandle.AuthService,
		bookingService,
		providerService,
		notificationService,
		adminService,
		tokens,
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

	return &HostelflowServerHandle{Server: srv}, nil
}
