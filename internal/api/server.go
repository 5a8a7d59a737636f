// Package api provides the HTTP API server and handlers for the egg hunt.
package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/ratelimit"
	"github.com/egghunt/egghunt-server/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options tunes the HTTP surface.
type Options struct {
	Version        string
	AllowedOrigin  string // browser origin of the player UI
	ClaimPerMinute int
	AuthPerMinute  int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
	authLimiter  *ratelimit.KeyedRateLimiter
	claimLimiter *ratelimit.KeyedRateLimiter
	setupDone    atomic.Bool
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, tokens *auth.TokenService, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:        st,
		services:     services,
		router:       router,
		logger:       logger,
		authLimiter:  ratelimit.PerMinute(opts.AuthPerMinute),
		claimLimiter: ratelimit.PerMinute(opts.ClaimPerMinute),
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(securityHeaders()...)
	if opts.AllowedOrigin != "" {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{opts.AllowedOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(authMiddleware(tokens))

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	humaConfig := huma.DefaultConfig("Egg Hunt API", version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)
	// Middlewares are bound when an operation is registered, so the guard
	// must be installed before any route.
	s.api.UseMiddleware(s.setupGuard)

	s.registerHealthRoutes()
	s.registerInstanceRoutes()
	s.registerAuthRoutes()
	s.registerInviteRoutes()
	s.registerHuntRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.authLimiter.Stop()
	s.claimLimiter.Stop()
}

// bearerAuth marks an operation as requiring a bearer token in OpenAPI.
var bearerAuth = []map[string][]string{{"bearer": {}}}
