// Package server exposes search results and IIIF resources over HTTP.
//
// Routes:
//
//	GET /health                              liveness
//	GET /search?q=&snippets=&source=&width=  assembled results
//	GET /iiif/presentation/{id}/manifest     IIIF Presentation 2 manifest
//	GET /iiif/presentation/{id}/search?q=    IIIF Content Search annotation list
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gardar/ocrlens/pkg/hocr"
	"github.com/gardar/ocrlens/pkg/iiif"
	"github.com/gardar/ocrlens/pkg/results"
	"github.com/gardar/ocrlens/pkg/search"
)

// VolumeLoader loads the hOCR of a volume for manifests
type VolumeLoader interface {
	Load(id string) (*hocr.HOCR, error)
}

// Config holds server configuration.
type Config struct {
	// Addr is the address to listen on (default: 127.0.0.1:8008)
	Addr string
	// Searcher answers search requests
	Searcher search.Searcher
	// Volumes backs manifest requests; nil disables them
	Volumes VolumeLoader
	// Assembler builds the /search response
	Assembler *results.Assembler
	// Annotations builds content search responses
	Annotations iiif.SearchBuilder
	// Sources are searched when a request names none
	Sources []string
	// DefaultSnippets is used when a request gives no snippet count
	DefaultSnippets int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Logger is the structured logger to use
	Logger *slog.Logger
}

// Server is the ocrlens HTTP server
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger

	mu        sync.RWMutex
	assembler *results.Assembler
	running   bool
	addr      net.Addr
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Searcher == nil {
		return nil, errors.New("a searcher is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8008"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Assembler == nil {
		cfg.Assembler = results.NewAssembler(nil, nil, cfg.Annotations.Manifests, cfg.Logger)
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		assembler: cfg.Assembler,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.logRequests(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetAssembler swaps the result assembler, e.g. after a config reload
func (s *Server) SetAssembler(a *results.Assembler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assembler = a
}

func (s *Server) currentAssembler() *results.Assembler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assembler
}

// Start serves HTTP until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.running = true
	s.addr = ln.Addr()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}
	return s.shutdown()
}

// shutdown stops the HTTP server gracefully
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}
	s.setNotRunning()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound listen address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr != nil {
		return s.addr.String()
	}
	return s.cfg.Addr
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
