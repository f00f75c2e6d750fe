package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"

	"github.com/joeychilson/regexpoutline/config"
	"github.com/joeychilson/regexpoutline/logger"
	"github.com/joeychilson/regexpoutline/outliner"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP server for the outline API.
type Server struct {
	outliner    *outliner.Outliner
	logger      logger.Logger
	router      *chi.Mux
	cfg         config.ServerConfig
	redisClient *redis.Client // owned, used by the rate limiter
}

// New creates a new API server with chi router and middleware stack. A nil
// cfg uses the defaults of config.New.
func New(o *outliner.Outliner, log logger.Logger, cfg *config.Config) (*Server, error) {
	if o == nil {
		return nil, errors.New("outliner cannot be nil")
	}
	if log == nil {
		log = logger.Noop()
	}
	if cfg == nil {
		cfg = config.New()
	}

	s := &Server{
		outliner: o,
		logger:   log,
		cfg:      cfg.Server,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httplog.RequestLogger(logger.Slog(log), &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/health" && respStatus == http.StatusOK
		},
	}))
	r.Use(chimiddleware.Recoverer)

	if cfg.RateLimit.IsEnabled() {
		rl := RateLimitConfig{
			RequestLimit:   cfg.RateLimit.Requests,
			WindowDuration: cfg.RateLimit.GetWindow(),
		}
		if cfg.RateLimit.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("failed to create rate limiter: %w", err)
			}
			s.redisClient = redis.NewClient(opts)
			rl.RedisClient = s.redisClient
		}
		r.Use(RateLimit(rl))
	}

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Server.APIKey))
		r.Post("/v1/outline", s.handleOutline)
		r.Post("/v1/outline/raw", s.handleOutlineRaw)
		r.Get("/v1/rules", s.handleRules)
	})

	s.router = r
	return s, nil
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartWithShutdown serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) StartWithShutdown(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.GetAddr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.GetReadTimeout(),
		WriteTimeout: s.cfg.GetWriteTimeout(),
		IdleTimeout:  s.cfg.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close releases resources held by the server (e.g., Redis connections).
func (s *Server) Close() error {
	if s.redisClient != nil {
		return s.redisClient.Close()
	}
	return nil
}
