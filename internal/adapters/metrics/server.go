package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server serves the Prometheus scrape endpoint on its own port,
// separate from the ops API.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a metrics server listening on the given port.
func NewServer(port int, path string, logger *slog.Logger) *Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the metrics server.
func (s *Server) Start() error {
	s.logger.Info("starting metrics server", "address", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
