// Package api exposes the HostelFlow booking system over HTTP.
//
// Routes are registered with huma on top of a chi router so every
// operation carries an OpenAPI description.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/store"
)

// Server wires the HostelFlow services into an http.Handler.
type Server struct {
	store         *store.Store
	auth          *service.AuthService
	booking       *service.BookingService
	provider      *service.ProviderService
	notifications *service.NotificationService
	admin         *service.AdminService
	tokens        *auth.TokenService

	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	authService *service.AuthService,
	bookingService *service.BookingService,
	providerService *service.ProviderService,
	notificationService *service.NotificationService,
	adminService *service.AdminService,
	tokens *auth.TokenService,
	corsOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:         st,
		auth:          authService,
		booking:       bookingService,
		provider:      providerService,
		notifications: notificationService,
		admin:         adminService,
		tokens:        tokens,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware(corsOrigins)

	config := huma.DefaultConfig("HostelFlow API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookingRoutes()
	s.registerProviderRoutes()
	s.registerNotificationRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.authMiddleware)
}
