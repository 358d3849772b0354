// Package web provides the HTTP upload service for batch conversion.
//
// Routes:
//
//	POST /convert                 multipart "files" (+ optional "sessionId"),
//	                              responds with the ZIP archive
//	GET  /progress/{sessionID}    JSON progress snapshot
//	GET  /health                  liveness probe
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ginjaninja78/asycuda-converter/internal/batch"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "ASYCUDA XML Converter"

// Options configures a Server.
type Options struct {
	// MaxUploadSize caps the request body in bytes.
	MaxUploadSize int64

	// RequestTimeout bounds a single conversion request.
	RequestTimeout time.Duration

	// ArchiveNameFormat names the returned ZIP (see batch.ArchiveName).
	ArchiveNameFormat string
}

// Server is the HTTP server for the conversion service.
type Server struct {
	runner  *batch.Runner
	tracker *batch.Tracker
	opts    Options
	router  *chi.Mux

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a new Server instance. The tracker is owned by the
// server; sessions are visible only through its routes.
func NewServer(runner *batch.Runner, tracker *batch.Tracker, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 64 << 20
	}
	if opts.ArchiveNameFormat == "" {
		opts.ArchiveNameFormat = "ASYCUDA_XML_Output_{short}.zip"
	}
	s := &Server{
		runner:  runner,
		tracker: tracker,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(accessLog)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Post("/convert", s.handleConvert)
	s.router.Get("/progress/{sessionID}", s.handleProgress)
	s.router.Get("/health", s.handleHealth)
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // conversions of large batches stream for a while
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	slog.Info("starting server", "addr", addr)
	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
