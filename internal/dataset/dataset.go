// Package dataset provides scoped handles over catalog datasets: one
// lifecycle contract shared by tables, feature classes, rasters and
// mosaic datasets.
//
// Handles are not safe for concurrent use. Temporary datasets share a
// scratch container, so a single logical worker must own a handle and
// the workspace it resolves into; use Options.Prefix to namespace
// scratch names when several workers share one scratch container.
package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// Options configures dataset handle construction.
type Options struct {
	// Name is the explicit dataset name; when set, the locator passed
	// to the constructor is taken as the container.
	Name string

	// Temporary marks the dataset as scratch-scoped: construction
	// clears any pre-existing dataset at the resolved path, and Close
	// deletes it again.
	Temporary bool

	// Scratch is the container used for temporaries without an
	// explicit container.
	Scratch string

	// Sanitize overrides the per-kind default name substitution map.
	Sanitize map[rune]string

	// Prefix salts temporary names, letting independent workers share
	// a scratch container.
	Prefix string

	// Metrics receives the open temporary dataset gauge updates. Nil
	// means no collection.
	Metrics output.MetricsCollector
}

// Dataset is a handle bound to a resolved catalog path. The zero value
// is not usable; construct handles through the kind constructors.
type Dataset struct {
	name      domain.ResolvedName
	catalog   output.Workspace
	logger    *slog.Logger
	metrics   output.MetricsCollector
	temporary bool
	closed    bool
}

// newDataset resolves a locator and establishes the lifecycle contract
// shared by every dataset kind.
func newDataset(ctx context.Context, cat output.Workspace, locator string, opts Options, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rn, err := domain.Resolve(ctx, locator, opts.Name, domain.ResolveOptions{
		Temporary: opts.Temporary,
		Scratch:   opts.Scratch,
		Sanitize:  opts.Sanitize,
		Prefix:    opts.Prefix,
		Namer:     cat,
	})
	if err != nil {
		return nil, err
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}

	d := &Dataset{
		name:      rn,
		catalog:   cat,
		logger:    logger,
		metrics:   metrics,
		temporary: opts.Temporary,
	}

	// A temporary handle guarantees a clean slot: whatever occupies
	// the resolved path is removed before the handle is handed out.
	if opts.Temporary {
		if err := d.Delete(ctx); err != nil {
			return nil, fmt.Errorf("clearing temporary slot %s: %w", d.Path(), err)
		}
		d.metrics.IncTempDatasets(1)
	}
	return d, nil
}

// Path returns the full catalog path of the dataset.
func (d *Dataset) Path() string { return d.name.Path() }

// Name returns the dataset name within its container.
func (d *Dataset) Name() string { return d.name.Name }

// Container returns the enclosing workspace path.
func (d *Dataset) Container() string { return d.name.Container }

// Resolved returns the resolved name triple.
func (d *Dataset) Resolved() domain.ResolvedName { return d.name }

// Temporary reports whether the handle owns a scratch dataset.
func (d *Dataset) Temporary() bool { return d.temporary }

// Exists reports whether the dataset is present in the catalog.
func (d *Dataset) Exists(ctx context.Context) (bool, error) {
	return d.catalog.Exists(ctx, d.Path())
}

// Describe returns the catalog's description of the dataset.
func (d *Dataset) Describe(ctx context.Context) (*domain.DatasetInfo, error) {
	info, err := d.catalog.Describe(ctx, d.Path())
	if err != nil {
		return nil, err
	}
	d.logger.Debug("described dataset", "path", d.Path())
	return info, nil
}

// SpatialReference returns the dataset's coordinate system string.
func (d *Dataset) SpatialReference(ctx context.Context) (string, error) {
	info, err := d.catalog.Describe(ctx, d.Path())
	if err != nil {
		return "", err
	}
	return info.SpatialReference, nil
}

// Delete removes the backing dataset. It is idempotent: a missing
// dataset is success. A dataset that survives the store's delete call
// is a *domain.DeleteError.
func (d *Dataset) Delete(ctx context.Context) error {
	path := d.Path()

	exists, err := d.catalog.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return nil
	}

	if err := d.catalog.Delete(ctx, path); err != nil {
		return &domain.DeleteError{Path: path, Err: err}
	}

	exists, err = d.catalog.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("re-checking %s: %w", path, err)
	}
	if exists {
		return &domain.DeleteError{Path: path}
	}

	d.logger.Info("deleted dataset", "path", path)
	return nil
}

// Close releases the handle. A temporary dataset is deleted exactly
// once no matter how many times Close runs; non-temporary datasets
// outlive their handles.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if !d.temporary {
		return nil
	}
	d.metrics.IncTempDatasets(-1)
	return d.Delete(context.Background())
}

// logOp emits the informational message that follows every successful
// state-changing operation.
func (d *Dataset) logOp(msg string, args ...any) {
	d.logger.Info(msg, append([]any{"path", d.Path()}, args...)...)
}
