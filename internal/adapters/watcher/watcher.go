// Package watcher provides the scratch workspace janitor. It watches
// the scratch container for activity and expires temporary datasets
// that outlive their owner, for example after a crashed build.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// defaultTempNames are the base names the dataset layer assigns to
// unnamed temporaries. They are matched when no prefix salt is
// configured.
var defaultTempNames = []string{"TempTable", "TempFeatureClass", "TempMosaic", "TempReference"}

// Config holds janitor configuration.
type Config struct {
	Scratch  string        // Scratch container path
	Prefix   string        // Temporary name salt, empty matches default names
	TTL      time.Duration // Age after which a leaked temporary is swept
	Debounce time.Duration // Quiet period after filesystem events
}

// Janitor sweeps leaked temporary datasets out of the scratch
// container.
type Janitor struct {
	fsWatcher *fsnotify.Watcher
	catalog   output.Workspace
	metrics   output.MetricsCollector
	logger    *slog.Logger
	config    Config

	mu        sync.Mutex
	firstSeen map[string]time.Time
	lastEvent time.Time
	dirty     bool
}

// New creates a janitor for the scratch container.
func New(cfg Config, catalog output.Workspace, metrics output.MetricsCollector, logger *slog.Logger) (*Janitor, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 5 * time.Second
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}

	return &Janitor{
		fsWatcher: fsWatcher,
		catalog:   catalog,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
		firstSeen: make(map[string]time.Time),
	}, nil
}

// Start watches the directory holding the scratch container and begins
// the sweep loop.
func (j *Janitor) Start(ctx context.Context) error {
	dir, err := filepath.Abs(filepath.Dir(j.config.Scratch))
	if err != nil {
		return err
	}
	if err := j.fsWatcher.Add(dir); err != nil {
		return err
	}
	j.logger.Info("janitor watching scratch container",
		"container", j.config.Scratch,
		"ttl", j.config.TTL,
	)

	go j.eventLoop(ctx)
	go j.sweepLoop(ctx)

	return nil
}

// Stop stops the janitor.
func (j *Janitor) Stop() error {
	return j.fsWatcher.Close()
}

// eventLoop marks the scratch container dirty on filesystem activity.
func (j *Janitor) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-j.fsWatcher.Events:
			if !ok {
				return
			}
			j.handleFsEvent(event)

		case err, ok := <-j.fsWatcher.Errors:
			if !ok {
				return
			}
			j.logger.Error("janitor watcher error", "error", err)
		}
	}
}

// handleFsEvent records activity on the scratch container file.
func (j *Janitor) handleFsEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(j.config.Scratch) {
		return
	}

	j.logger.Debug("scratch activity", "path", event.Name, "op", event.Op.String())

	j.mu.Lock()
	j.dirty = true
	j.lastEvent = time.Now()
	j.mu.Unlock()
}

// sweepLoop rescans the scratch container after debounced activity and
// sweeps on a TTL-derived schedule.
func (j *Janitor) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(j.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !j.consumeDirty() {
				continue
			}
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("janitor sweep failed", "error", err)
			}
		}
	}
}

// consumeDirty reports whether a debounced rescan is due and clears
// the flag.
func (j *Janitor) consumeDirty() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.dirty || time.Since(j.lastEvent) < j.config.Debounce {
		return false
	}
	j.dirty = false
	return true
}

// Sweep scans the scratch container and deletes temporary datasets
// older than the TTL. It returns the number of datasets removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	return j.sweep(ctx, time.Now(), j.config.TTL)
}

// SweepAll deletes every temporary dataset regardless of age. Used by
// the sweep command for explicit cleanup.
func (j *Janitor) SweepAll(ctx context.Context) (int, error) {
	return j.sweep(ctx, time.Now(), 0)
}

func (j *Janitor) sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	infos, err := j.catalog.List(ctx, j.config.Scratch)
	if err != nil {
		return 0, err
	}

	temps := make(map[string]bool)
	for _, info := range infos {
		name := filepath.Base(info.Path)
		if !j.isTemporary(name) {
			continue
		}
		temps[info.Path] = true

		j.mu.Lock()
		if _, ok := j.firstSeen[info.Path]; !ok {
			j.firstSeen[info.Path] = now
		}
		j.mu.Unlock()
	}

	// Forget datasets their owners already cleaned up.
	j.mu.Lock()
	for path := range j.firstSeen {
		if !temps[path] {
			delete(j.firstSeen, path)
		}
	}
	j.mu.Unlock()

	swept := 0
	for path := range temps {
		j.mu.Lock()
		seen := j.firstSeen[path]
		j.mu.Unlock()

		if now.Sub(seen) < ttl {
			continue
		}

		if err := j.catalog.Delete(ctx, path); err != nil {
			j.logger.Error("failed to sweep temporary dataset", "path", path, "error", err)
			continue
		}

		j.mu.Lock()
		delete(j.firstSeen, path)
		j.mu.Unlock()

		// The open-handle gauge belongs to the process that created the
		// temporary; a leaked dataset has no live handle, so sweeps
		// count as operations instead.
		j.metrics.IncOperation("scratch_sweep", true)
		j.logger.Info("swept leaked temporary dataset", "path", path, "age", now.Sub(seen))
		swept++
	}

	return swept, nil
}

// isTemporary reports whether a dataset name looks like one of ours.
// With a prefix salt configured only salted names match; otherwise the
// default temporary base names and their uniquified variants match.
func (j *Janitor) isTemporary(name string) bool {
	if j.config.Prefix != "" {
		return strings.HasPrefix(name, j.config.Prefix)
	}
	for _, base := range defaultTempNames {
		if name == base || strings.HasPrefix(name, base+"_") {
			return true
		}
	}
	return false
}
