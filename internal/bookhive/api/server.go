// Package api exposes the BookHive catalog over HTTP.
//
// Routes are registered with huma on top of a chi router so every
// operation carries an OpenAPI description, while file-serving and
// multipart endpoints that need raw request access stay on chi
// directly.
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
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/covers"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/search"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/service"
	"github.com/Sanjay-nithin/campuscore-server/internal/bookhive/store"
)

// Server wires the BookHive services into an http.Handler.
type Server struct {
	store   *store.Store
	index   *search.SearchIndex
	auth    *service.AuthService
	profile *service.ProfileService
	library *service.LibraryService
	catalog *service.CatalogService
	admin   *service.AdminService
	tokens  *auth.TokenService
	covers  *covers.Storage

	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st *store.Store,
	index *search.SearchIndex,
	authService *service.AuthService,
	profileService *service.ProfileService,
	libraryService *service.LibraryService,
	catalogService *service.CatalogService,
	adminService *service.AdminService,
	tokens *auth.TokenService,
	coverStorage *covers.Storage,
	corsOrigins []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:   st,
		index:   index,
		auth:    authService,
		profile: profileService,
		library: libraryService,
		catalog: catalogService,
		admin:   adminService,
		tokens:  tokens,
		covers:  coverStorage,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.setupMiddleware(corsOrigins)

	config := huma.DefaultConfig("BookHive API", "1.0.0")
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
	s.registerProfileRoutes()
	s.registerLibraryRoutes()
	s.registerCatalogRoutes()
	s.registerCoverRoutes()
	s.registerAdminRoutes()
	s.registerImportRoutes()

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
