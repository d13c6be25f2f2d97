// Package api provides the HTTP surface of the permalink server: the admin
// API for managing mappings and the redirect gateway that resolves friendly
// URLs.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/permalinkapp/permalink-server/internal/service"
	"github.com/permalinkapp/permalink-server/internal/syncer"
	"github.com/permalinkapp/permalink-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	router    *chi.Mux
	api       huma.API
	mappings  *service.MappingService
	sync      *syncer.Worker
	validator *validation.Validator
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(mappings *service.MappingService, sync *syncer.Worker, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		mappings:  mappings,
		sync:      sync,
		validator: validation.New(),
		logger:    logger,
	}

	s.setupMiddleware()

	s.api = humachi.New(s.router, huma.DefaultConfig("Permalink API", "1.0.0"))
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerMappingRoutes()
	s.registerSettingsRoutes()

	// Everything that doesn't match a registered route is a candidate
	// friendly URL.
	s.router.NotFound(s.handleResolve)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}
