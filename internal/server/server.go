package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"catscan/internal/config"
	"catscan/internal/history"
	"catscan/internal/logging"
)

// Server exposes the visualization harness over HTTP: the demo page, the
// image listing, raw image bytes, the SSE detection stream, and run history.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *history.Store
	mux    *http.ServeMux

	listener net.Listener
	server   *http.Server
}

// New constructs a Server. store may be nil, in which case run history
// endpoints report empty results and runs are not recorded.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires config")
	}

	srv := &Server{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "server"),
		store:  store,
		mux:    http.NewServeMux(),
	}

	srv.mux.HandleFunc("/", srv.handleIndex)
	srv.mux.HandleFunc("/api/images", srv.handleImages)
	srv.mux.HandleFunc("/api/status", srv.handleStatus)
	srv.mux.HandleFunc("/api/runs", srv.handleRuns)
	srv.mux.HandleFunc("/api/runs/", srv.handleRun)
	srv.mux.HandleFunc("/image/", srv.handleImage)
	srv.mux.HandleFunc("/detect", srv.handleDetect)

	srv.server = &http.Server{
		Handler:           srv.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: /detect holds the response open for the whole
		// batch and is bounded by per-invocation timeouts instead.
		IdleTimeout: 60 * time.Second,
	}
	return srv, nil
}

// Handler returns the route table, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving on the configured bind address. Serving stops when
// ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
