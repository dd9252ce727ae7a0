// Package api serves the record and object HTTP service the wardrobe engine
// persists through.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/ratelimit"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	// MaxObjectBytes bounds PUT /objects bodies.
	MaxObjectBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	records         store.Records
	objects         *images.Storage
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	mutationLimiter *ratelimit.KeyedRateLimiter
	opts            Options
}

// NewServer creates a server with middleware and every route registered.
// A nil limiter leaves mutations unthrottled.
func NewServer(records store.Records, objects *images.Storage, limiter *ratelimit.KeyedRateLimiter, opts Options, logger *slog.Logger) *Server {
	if opts.MaxObjectBytes <= 0 {
		opts.MaxObjectBytes = images.DefaultMaxBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		records:         records,
		objects:         objects,
		router:          chi.NewRouter(),
		logger:          logger,
		mutationLimiter: limiter,
		opts:            opts,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Smart Wardrobe Records API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerRecordRoutes()
	s.registerObjectRoutes()

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

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.mutationLimiter != nil {
		s.router.Use(mutationRateLimit(s.mutationLimiter, s.logger))
	}
}
