package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/store"
)

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	Log            zerolog.Logger
	Collector      *collector.Collector
	Store          store.FavoritesStore
	Renderer       report.Renderer
	DefaultPeriod  model.Period
	DevMode        bool
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	collector *collector.Collector
	store     store.FavoritesStore
	renderer  report.Renderer
	period    model.Period
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		collector: cfg.Collector,
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		period:    cfg.DefaultPeriod,
	}
	if s.period == "" {
		s.period = model.Period5y
	}

	s.setupMiddleware(cfg.AllowedOrigins, cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware(origins []string, devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Upstream fetches dominate request time.
	s.router.Use(middleware.Timeout(60 * time.Second))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json", "text/plain"))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/analysis/{ticker}", s.handleAnalysis)
		r.Get("/report/{ticker}", s.handleReport)
		r.Get("/chart/{ticker}", s.handleChart)
		r.Get("/compare", s.handleCompare)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.handleListFavorites)
			r.Post("/", s.handleAddFavorite)
			r.Delete("/{symbol}", s.handleRemoveFavorite)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
