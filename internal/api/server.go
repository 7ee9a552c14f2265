// Package api provides the HTTP API server and handlers for the Foodgram
// application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foodgramapp/foodgram-server/internal/http/response"
	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/store"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// Options carries the HTTP-facing settings the server needs from config.
type Options struct {
	AllowedOrigins       []string // empty allows any origin
	LoginRateLimit       int      // login attempts per minute per client IP
	MaxBodyBytes         int64    // cap for recipe bodies carrying inline images
	ShoppingListFileName string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	storage         *StorageServices
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
	opts            Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, storage *StorageServices, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 20
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = MaxUploadSize
	}
	if opts.ShoppingListFileName == "" {
		opts.ShoppingListFileName = DefaultShoppingListFileName
	}
	if storage == nil {
		storage = &StorageServices{}
	}

	s := &Server{
		store:           st,
		services:        services,
		storage:         storage,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: NewRateLimiter(opts.LoginRateLimit, time.Minute, opts.LoginRateLimit),
		opts:            opts,
	}

	s.setupMiddleware()
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Shutdown releases background resources held by the server.
func (s *Server) Shutdown() error {
	s.authRateLimiter.Stop()
	return nil
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(corsOptions(s.opts.AllowedOrigins)))
	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// setupAPI mounts huma on the router with the envelope transformer and the
// domain error mapper.
func (s *Server) setupAPI() {
	config := huma.DefaultConfig("Foodgram API", APIVersion)
	config.Info.Description = "Recipes, favorites, subscriptions and shopping lists."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, config)
	RegisterErrorHandler(s.logger)
}

// setupRoutes registers every operation plus the plain HTTP endpoints.
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/media/recipes/{name}", s.handleMedia)

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerSubscriptionRoutes()
	s.registerTagRoutes()
	s.registerIngredientRoutes()
	s.registerRecipeRoutes()
	s.registerInteractionRoutes()
	s.registerSearchRoutes()
	s.registerAdminRoutes()
}

// handleMedia serves stored recipe images.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.storage.Recipes == nil || !s.storage.Recipes.Exists(name) {
		response.NotFound(w, "image not found", s.logger)
		return
	}

	// Stored names are content-independent UUIDs that never get rewritten.
	w.Header().Set("Cache-Control", CacheOneWeek)
	http.ServeFile(w, r, s.storage.Recipes.Path(name))
}
