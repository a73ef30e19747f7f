package dataset

import (
	"context"
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// Raster is a handle over a raster dataset. Raster names pass through
// unsanitized; on-disk raster formats keep their extensions.
type Raster struct {
	*Dataset
	cat output.RasterCatalog
}

// NewRaster opens a raster handle.
func NewRaster(ctx context.Context, cat output.RasterCatalog, locator string, opts Options, logger *slog.Logger) (*Raster, error) {
	d, err := newDataset(ctx, cat, locator, opts, logger)
	if err != nil {
		return nil, err
	}
	return &Raster{Dataset: d, cat: cat}, nil
}

// NewTempRaster opens a temporary raster in the scratch folder. An
// empty name defaults to "TempRaster".
func NewTempRaster(ctx context.Context, cat output.RasterCatalog, name, scratch string, logger *slog.Logger) (*Raster, error) {
	if name == "" {
		name = "TempRaster"
	}
	return NewRaster(ctx, cat, name, Options{Temporary: true, Scratch: scratch}, logger)
}

// CalculateStatistics computes raster statistics in place.
func (r *Raster) CalculateStatistics(ctx context.Context, opts output.StatisticsOptions) error {
	if err := r.cat.CalculateStatistics(ctx, r.Path(), opts); err != nil {
		return err
	}
	r.logOp("calculated statistics")
	return nil
}

// CopyTo saves a copy of the raster at dst.
func (r *Raster) CopyTo(ctx context.Context, dst string, opts output.RasterCopyOptions) error {
	if err := r.cat.CopyRaster(ctx, r.Path(), dst, opts); err != nil {
		return err
	}
	r.logOp("copied raster", "out", dst)
	return nil
}
