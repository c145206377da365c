// Package web provides the HTTP server and handlers for the operadoras API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/operadoras/internal/config"
	"github.com/JonMunkholm/operadoras/internal/core"
	"github.com/JonMunkholm/operadoras/internal/web/middleware"
)

// Server is the HTTP server for the operadoras API.
type Server struct {
	cache    *core.Cache
	cfg      *config.Config
	gatherer prometheus.Gatherer
	limiter  *middleware.RateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. gatherer may be nil to disable
// the metrics endpoint.
func NewServer(cache *core.Cache, cfg *config.Config, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		cache:    cache,
		cfg:      cfg,
		gatherer: gatherer,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst, 10*time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)

	// Any origin may read the API; the paired frontend runs on another port.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", "X-Request-Id"},
		ExposedHeaders: []string{"ETag", "X-Request-Id"},
		MaxAge:         s.cfg.CORS.MaxAge,
	}))

	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, r, errRateLimited)
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/operadoras", s.handleOperadoras)
		r.Get("/operadoras/status", s.handleStatus)
		if s.cfg.Cache.ReloadEnabled {
			r.Post("/operadoras/reload", s.handleReload)
		}
	})

	if s.cfg.Metrics.Enabled && s.gatherer != nil {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Start begins listening for HTTP requests. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if s.limiter != nil {
		go s.limiter.Run(ctx, time.Minute)
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
