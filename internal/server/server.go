// Package server exposes the dashboard to a browser front end as a small
// JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/syncstatus"
)

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithAssistant enables POST /api/assistant.
func WithAssistant(a *assistant.Service) Option {
	return func(s *Server) { s.assistant = a }
}

// WithSync enables GET /api/sync-status.
func WithSync(c *syncstatus.Client) Option {
	return func(s *Server) { s.sync = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAllowedOrigin sets the Access-Control-Allow-Origin value. Empty
// disables CORS headers.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) { s.allowedOrigin = origin }
}

// Server serves the dashboard API.
type Server struct {
	shell         *dashboard.Shell
	assistant     *assistant.Service
	sync          *syncstatus.Client
	logger        *zap.Logger
	allowedOrigin string

	router *mux.Router
}

// New builds the router. The shell must outlive the server.
func New(shell *dashboard.Shell, opts ...Option) *Server {
	s := &Server{
		shell:  shell,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/roadmap", s.handleRoadmap).Methods(http.MethodGet)
	api.HandleFunc("/graph", s.handleGraph).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/view", s.handleSetView).Methods(http.MethodPut)
	api.HandleFunc("/kanban", s.handleKanban).Methods(http.MethodGet)
	api.HandleFunc("/progress", s.handleProgressList).Methods(http.MethodGet)
	api.HandleFunc("/progress/{id}", s.handleProgressGet).Methods(http.MethodGet)
	api.HandleFunc("/progress/{id}", s.handleProgressSet).Methods(http.MethodPut)
	api.HandleFunc("/reviews", s.handleReviewsDue).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}", s.handleReviewDone).Methods(http.MethodPost)
	api.HandleFunc("/assistant", s.handleAsk).Methods(http.MethodPost)
	api.HandleFunc("/assistant/suggest", s.handleSuggest).Methods(http.MethodPost)
	api.HandleFunc("/sync-status", s.handleSyncStatus).Methods(http.MethodGet)

	r.Use(s.logRequests)
	return r
}

// Handler returns the API with CORS applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.allowedOrigin, s.router)
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard api listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("dashboard api shutdown", zap.Error(err))
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("dashboard api stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
