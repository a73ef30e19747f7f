// Package main provides the entry point for the mosaicctl service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/catalog"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/adapters/watcher"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/app"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/application"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/config"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/timing"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mosaicctl",
	Short: "mosaicctl - Time-Enabled Mosaic Dataset Manager",
	Long: `mosaicctl builds and manages time-enabled mosaic datasets.

It runs declarative build workflows against a workspace catalog and
exposes a REST API for triggering builds and inspecting mosaic health.

Features:
  - Declarative YAML build workflows
  - Robust overview builds with automatic retry
  - Scratch workspace janitor for leaked temporaries
  - Multiple raster sources (local, AWS S3, Azure, HTTP)
  - TLS with automatic certificate management
  - Prometheus metrics`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("mosaicctl %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <workflow>",
	Short: "Run a single build workflow and exit",
	Long: `Run a single build workflow and exit.

The argument is either a path to a workflow YAML file or the name of a
workflow in the configured workflow directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "List the datasets in the workspace",
	RunE:  runWorkspace,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete leftover temporary datasets from the scratch workspace",
	RunE:  runSweep,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")

	// Server flags
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().Bool("tls", false, "enable TLS")
	rootCmd.Flags().StringSlice("tls-domains", nil, "TLS domains")
	rootCmd.Flags().String("tls-email", "", "TLS email for Let's Encrypt")

	// Workspace flags
	rootCmd.PersistentFlags().String("workspace", "", "workspace container path")
	rootCmd.PersistentFlags().String("scratch", "", "scratch container path")
	rootCmd.PersistentFlags().String("workflows", "", "workflow directory")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("tls.enabled", rootCmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("tls.domains", rootCmd.Flags().Lookup("tls-domains"))
	_ = viper.BindPFlag("tls.email", rootCmd.Flags().Lookup("tls-email"))
	_ = viper.BindPFlag("workspace.root", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("workspace.scratch", rootCmd.PersistentFlags().Lookup("scratch"))
	_ = viper.BindPFlag("workflows.dir", rootCmd.PersistentFlags().Lookup("workflows"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(sweepCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting mosaicctl",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"workspace", cfg.Workspace.Root,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize application
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	// Place configured workflows under management
	workflows, err := workflowFiles(cfg.Workflows.Dir)
	if err != nil {
		logger.Warn("reading workflow directory", "dir", cfg.Workflows.Dir, "error", err)
	}
	if err := application.RegisterWorkflows(workflows); err != nil {
		return err
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address())
		if err := application.Start(ctx); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		cancel()
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("shutting down server")
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func runBuild(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = application.Catalog.Close() }()

	wf, err := resolveWorkflow(args[0], cfg.Workflows.Dir)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := application.BuildService.Build(ctx, wf); err != nil {
		return fmt.Errorf("building %s: %w", wf.Name, err)
	}

	logger.Info("build finished", "workflow", wf.Name, "elapsed", timing.FormatElapsed(time.Since(start)))
	return nil
}

func runWorkspace(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	cat := catalog.NewSQLiteCatalog()
	defer func() { _ = cat.Close() }()

	datasets, err := cat.List(ctx, cfg.Workspace.Root)
	if err != nil {
		return fmt.Errorf("listing workspace: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Printf("no datasets in %s\n", cfg.Workspace.Root)
		return nil
	}

	for _, ds := range datasets {
		fmt.Printf("%-12s %s\n", ds.Kind, ds.Path)
	}
	return nil
}

func runSweep(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	ctx := context.Background()

	cat := catalog.NewSQLiteCatalog()
	defer func() { _ = cat.Close() }()

	j, err := watcher.New(
		watcher.Config{
			Scratch:  cfg.Workspace.Scratch,
			Prefix:   cfg.Workspace.Prefix,
			TTL:      cfg.Janitor.TTL,
			Debounce: cfg.Janitor.Debounce,
		},
		cat,
		&output.NoOpMetrics{},
		logger,
	)
	if err != nil {
		return fmt.Errorf("initializing janitor: %w", err)
	}
	defer func() { _ = j.Stop() }()

	swept, err := j.SweepAll(ctx)
	if err != nil {
		return fmt.Errorf("sweeping scratch workspace: %w", err)
	}

	fmt.Printf("swept %d temporary dataset(s) from %s\n", swept, cfg.Workspace.Scratch)
	return nil
}

// workflowFiles lists the workflow YAML files in dir, sorted by name.
func workflowFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// resolveWorkflow loads a workflow from an explicit file path, or by
// name from the workflow directory.
func resolveWorkflow(arg, dir string) (*application.Workflow, error) {
	if _, err := os.Stat(arg); err == nil {
		return application.LoadWorkflow(arg)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, arg+ext)
		if _, err := os.Stat(path); err == nil {
			return application.LoadWorkflow(path)
		}
	}

	return nil, fmt.Errorf("workflow %q not found (no such file, and not in %s)", arg, dir)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
