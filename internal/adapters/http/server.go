// Package http provides the ops HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/application"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/config"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// Server wraps the HTTP server with application handlers.
type Server struct {
	server      *http.Server
	router      *mux.Router
	registry    *application.MosaicRegistry
	builder     *application.BuildService
	health      *application.HealthService
	syncService *application.SyncService
	catalog     output.Workspace
	workspace   string
	logger      *slog.Logger
	config      config.ServerConfig
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg config.ServerConfig,
	registry *application.MosaicRegistry,
	builder *application.BuildService,
	health *application.HealthService,
	syncService *application.SyncService,
	catalog output.Workspace,
	workspace string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		registry:    registry,
		builder:     builder,
		health:      health,
		syncService: syncService,
		catalog:     catalog,
		workspace:   workspace,
		logger:      logger,
		config:      cfg,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Add middleware
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	// API v1
	api := r.PathPrefix("/api/v1").Subrouter()

	// Workspace endpoints
	api.HandleFunc("/workspace", s.handleListWorkspace).Methods(http.MethodGet)

	// Mosaic endpoints
	api.HandleFunc("/mosaics", s.handleListMosaics).Methods(http.MethodGet)
	api.HandleFunc("/mosaics/{name}", s.handleGetMosaic).Methods(http.MethodGet)
	api.HandleFunc("/mosaics/{name}/status", s.handleGetMosaicStatus).Methods(http.MethodGet)

	// Build trigger (only if a build service is configured)
	if s.builder != nil {
		api.HandleFunc("/mosaics/{name}/build", s.handleBuild).Methods(http.MethodPost)
	}

	// Sync endpoint (only if sync service is configured)
	if s.syncService != nil {
		api.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	}

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
