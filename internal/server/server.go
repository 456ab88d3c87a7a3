package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/idguard/internal/hygiene"
	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/service"
)

// Server limits.
const (
	// MaxBodyBytes bounds a request body.
	MaxBodyBytes = 1 << 20

	// MaxPageSize bounds the limit query parameter of the history listing.
	MaxPageSize = 100

	shutdownTimeout = 10 * time.Second
)

// Backend is what the handlers call. *service.Service implements it.
type Backend interface {
	CheckExposure(ctx context.Context, email, query string) (*service.Outcome[*model.CombinedReport], error)
	AssessHygiene(ctx context.Context, answers map[string]int) (*service.Outcome[*model.HygieneReport], error)
	Questionnaire() []hygiene.Category
	History(ctx context.Context, moduleType model.ModuleType, page, perPage int) (*service.Page, error)
	Report(ctx context.Context, id int64) (*model.Report, error)
}

// Server serves the JSON API.
type Server struct {
	backend      Backend
	pageSize     int
	checkTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPageSize sets the default limit of the history listing.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = min(n, MaxPageSize)
		}
	}
}

// WithCheckTimeout bounds a single exposure or hygiene request. Zero
// leaves requests bounded only by the providers' own timeouts.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.checkTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Server calling backend.
func New(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend:  backend,
		pageSize: 5,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router with every route mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/exposure", s.handleExposure)
		r.Post("/hygiene", s.handleHygiene)
		r.Get("/questionnaire", s.handleQuestionnaire)
		r.Get("/reports", s.handleReports)
		r.Get("/reports/{id}", s.handleReport)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}
