// Package health serves a readiness endpoint on a port separate from
// the download listener, so orchestration can tell a starting galleyd
// from a serving one.
//
// GET /health answers 102 Processing with body "starting" until the
// process is marked ready, then 200 OK with body "ok".
package health

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Server provides the readiness endpoint.
type Server struct {
	server *http.Server
	ready  atomic.Bool
}

// New creates a health server on the specified port.
func New(port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		server: &http.Server{
			Addr:    ":" + strconv.Itoa(port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.healthHandler)

	return s
}

// Start begins listening for health check requests.
func (s *Server) Start() error {
	slog.Info("Starting health server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the health server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// MarkReady makes /health report 200.
func (s *Server) MarkReady() {
	s.ready.Store(true)
	slog.Info("Health server marked as ready")
}

// MarkNotReady makes /health report 102 again, for use during shutdown.
func (s *Server) MarkNotReady() {
	s.ready.Store(false)
	slog.Info("Health server marked as not ready")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			slog.Error("Failed to write health response", "error", err)
		}
	} else {
		w.WriteHeader(http.StatusProcessing)
		if _, err := w.Write([]byte("starting")); err != nil {
			slog.Error("Failed to write health response", "error", err)
		}
	}
}
