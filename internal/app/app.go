// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/catalog"
	httpAdapter "github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/http"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/metrics"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/rastersource"
	tlsAdapter "github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/tls"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/watcher"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/application"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/config"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/progress"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Catalog       *catalog.SQLiteCatalog
	Sources       map[string]output.RasterSource
	Registry      *application.MosaicRegistry
	BuildService  *application.BuildService
	SyncService   *application.SyncService
	HealthService *application.HealthService
	HTTPServer    *httpAdapter.Server
	TLSServer     *tlsAdapter.Server
	Janitor       *watcher.Janitor
	Metrics       *metrics.Collector
	MetricsServer *metrics.Server
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("mosaicctl")
		app.MetricsServer = metrics.NewServer(
			cfg.Metrics.Port,
			cfg.Metrics.Path,
			logger,
		)
	}

	var metricsCollector output.MetricsCollector
	if app.Metrics != nil {
		metricsCollector = app.Metrics
	} else {
		metricsCollector = &output.NoOpMetrics{}
	}

	// Initialize workspace catalog
	app.Catalog = catalog.NewSQLiteCatalog()

	// Initialize raster sources
	sources, err := initSources(ctx, cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("initializing raster sources: %w", err)
	}
	app.Sources = sources

	// Initialize mosaic registry
	app.Registry = application.NewMosaicRegistry(metricsCollector, logger)

	// Initialize build service
	var sink output.ProgressSink
	if cfg.Logging.Quiet {
		sink = progress.QuietSink{}
	} else {
		sink = progress.NewLogSink(logger)
	}
	app.BuildService = application.NewBuildService(
		app.Catalog,
		app.Sources,
		app.Registry,
		metricsCollector,
		sink,
		cfg.Workspace.Scratch,
		cfg.Workspace.Prefix,
		logger,
	)

	// Initialize sync service
	if cfg.Sync.Enabled {
		app.SyncService = application.NewSyncService(
			app.Catalog,
			app.Registry,
			metricsCollector,
			cfg.Workspace.Root,
			cfg.Sync.Interval,
			logger,
		)
	}

	// Initialize health service
	app.HealthService = application.NewHealthService(app.Registry, app.Catalog, cfg.Workspace.Scratch)

	// Initialize HTTP server
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.Registry,
		app.BuildService,
		app.HealthService,
		app.SyncService,
		app.Catalog,
		cfg.Workspace.Root,
		logger,
	)

	// Initialize TLS server if enabled
	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(cfg.TLS, app.HTTPServer.Router(), logger)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	// Initialize scratch janitor
	if cfg.Janitor.Enabled {
		j, err := watcher.New(
			watcher.Config{
				Scratch:  cfg.Workspace.Scratch,
				Prefix:   cfg.Workspace.Prefix,
				TTL:      cfg.Janitor.TTL,
				Debounce: cfg.Janitor.Debounce,
			},
			app.Catalog,
			metricsCollector,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize scratch janitor", "error", err)
		} else {
			app.Janitor = j
		}
	}

	return app, nil
}

// RegisterWorkflows loads every workflow file and places its mosaic
// under management.
func (a *App) RegisterWorkflows(paths []string) error {
	for _, path := range paths {
		wf, err := application.LoadWorkflow(path)
		if err != nil {
			return fmt.Errorf("loading workflow %s: %w", path, err)
		}
		a.Registry.Register(wf)
	}
	return nil
}

// Start starts all application components.
func (a *App) Start(ctx context.Context) error {
	// Start scratch janitor
	if a.Janitor != nil {
		if err := a.Janitor.Start(ctx); err != nil {
			a.Logger.Warn("failed to start scratch janitor", "error", err)
		}
	}

	// Start sync service
	if a.SyncService != nil {
		a.SyncService.Start(ctx)
	}

	// Start metrics server in background
	if a.MetricsServer != nil {
		go func() {
			if err := a.MetricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start server
	if a.Config.TLS.Enabled && a.TLSServer != nil {
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}
	return a.HTTPServer.Start()
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop janitor
	if a.Janitor != nil {
		_ = a.Janitor.Stop()
	}

	// Stop sync service
	if a.SyncService != nil {
		a.SyncService.Stop()
	}

	// Shutdown metrics server
	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
	}

	// Close catalog connections
	if err := a.Catalog.Close(); err != nil {
		a.Logger.Error("catalog shutdown error", "error", err)
	}

	return nil
}

// initSources initializes the configured raster source adapters.
func initSources(ctx context.Context, cfgs []config.SourceConfig) (map[string]output.RasterSource, error) {
	sources := make(map[string]output.RasterSource, len(cfgs))

	for _, cfg := range cfgs {
		var (
			src output.RasterSource
			err error
		)

		switch cfg.Type {
		case "local":
			src = rastersource.NewLocalSource(cfg.LocalPath)

		case "s3":
			src, err = rastersource.NewS3Source(ctx, rastersource.S3Config{
				Bucket:          cfg.S3.Bucket,
				Region:          cfg.S3.Region,
				Prefix:          cfg.S3.Prefix,
				Endpoint:        cfg.S3.Endpoint,
				AccessKeyID:     cfg.S3.AccessKeyID,
				SecretAccessKey: cfg.S3.SecretAccessKey,
			})

		case "azure":
			src, err = rastersource.NewAzureSource(rastersource.AzureConfig{
				Container:        cfg.Azure.Container,
				AccountName:      cfg.Azure.AccountName,
				AccountKey:       cfg.Azure.AccountKey,
				ConnectionString: cfg.Azure.ConnectionString,
				Prefix:           cfg.Azure.Prefix,
			})

		case "http":
			src = rastersource.NewHTTPSource(rastersource.HTTPConfig{
				BaseURL:   cfg.HTTP.BaseURL,
				IndexFile: cfg.HTTP.IndexFile,
				Timeout:   cfg.HTTP.Timeout,
				Username:  cfg.HTTP.Username,
				Password:  cfg.HTTP.Password,
			})

		default:
			return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.Name, err)
		}

		sources[cfg.Name] = src
	}

	return sources, nil
}
