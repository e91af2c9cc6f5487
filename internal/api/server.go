package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/playhook/internal/events"
	"github.com/mattjoyce/playhook/internal/history"
	"github.com/mattjoyce/playhook/internal/player"
)

// EventSink delivers a player event to its listeners.
type EventSink interface {
	Deliver(ev player.Event) error
}

// ExecutionLister reads the execution history.
type ExecutionLister interface {
	List(ctx context.Context, limit int) ([]history.Record, error)
}

const shutdownTimeout = 5 * time.Second

// Config holds API server configuration.
type Config struct {
	Listen string
	// APIKey is the bearer token required on every route except /healthz.
	APIKey string
}

// Server is the HTTP event ingress.
type Server struct {
	config    Config
	sink      EventSink
	history   ExecutionLister
	hub       *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance. history may be nil when the
// execution log is disabled.
func New(config Config, sink EventSink, history ExecutionLister, hub *events.Hub, logger *slog.Logger) *Server {
	if hub == nil {
		hub = events.NewHub(256)
	}
	return &Server{
		config:    config,
		sink:      sink,
		history:   history,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns ctx.Err() after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Listen, err)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Request contexts end with ctx so open event streams let Shutdown finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("API server listening", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.server.Serve(ln) }()

	select {
	case err := <-served:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/events", s.handlePostEvent)
		r.Get("/events/stream", s.handleEventStream)
		r.Get("/executions", s.handleListExecutions)
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
