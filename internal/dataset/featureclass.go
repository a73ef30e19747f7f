package dataset

import (
	"context"
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// FeatureClass is a handle over a vector dataset. It carries every
// table capability plus geometry operations.
type FeatureClass struct {
	*Table
	cat output.VectorCatalog
}

// NewFeatureClass opens a feature class handle.
func NewFeatureClass(ctx context.Context, cat output.VectorCatalog, locator string, opts Options, logger *slog.Logger) (*FeatureClass, error) {
	t, err := NewTable(ctx, cat, locator, opts, logger)
	if err != nil {
		return nil, err
	}
	return &FeatureClass{Table: t, cat: cat}, nil
}

// NewTempFeatureClass opens a temporary feature class in the scratch
// container. An empty name defaults to "TempFeatureClass".
func NewTempFeatureClass(ctx context.Context, cat output.VectorCatalog, name, scratch string, logger *slog.Logger) (*FeatureClass, error) {
	if name == "" {
		name = "TempFeatureClass"
	}
	return NewFeatureClass(ctx, cat, name, Options{Temporary: true, Scratch: scratch}, logger)
}

// Create materializes the feature class in the catalog.
func (f *FeatureClass) Create(ctx context.Context, opts output.FeatureClassOptions) error {
	if err := f.cat.CreateFeatureClass(ctx, f.Container(), f.Name(), opts); err != nil {
		return err
	}
	f.logOp("created feature class", "container", f.Container())
	return nil
}

// Extent returns the dataset's bounding box.
func (f *FeatureClass) Extent(ctx context.Context) (domain.Extent, error) {
	info, err := f.Describe(ctx)
	if err != nil {
		return domain.Extent{}, err
	}
	return info.Extent, nil
}

// Buffer writes buffer polygons around the features into out.
func (f *FeatureClass) Buffer(ctx context.Context, out *FeatureClass, distance string, opts output.BufferOptions) error {
	if err := f.cat.Buffer(ctx, f.Path(), out.Path(), distance, opts); err != nil {
		return err
	}
	f.logOp("buffered", "out", out.Path(), "distance", distance)
	return nil
}

// Clip writes the features overlaying clip into out.
func (f *FeatureClass) Clip(ctx context.Context, clip, out *FeatureClass) error {
	if err := f.cat.Clip(ctx, f.Path(), clip.Path(), out.Path()); err != nil {
		return err
	}
	f.logOp("clipped", "clip", clip.Path(), "out", out.Path())
	return nil
}

// Erase writes the portions of the features outside erase into out.
func (f *FeatureClass) Erase(ctx context.Context, erase, out *FeatureClass) error {
	if err := f.cat.Erase(ctx, f.Path(), erase.Path(), out.Path()); err != nil {
		return err
	}
	f.logOp("erased", "erase", erase.Path(), "out", out.Path())
	return nil
}

// Project reprojects the features into out.
func (f *FeatureClass) Project(ctx context.Context, out string, opts output.ProjectOptions) error {
	if err := f.cat.Project(ctx, f.Path(), out, opts); err != nil {
		return err
	}
	f.logOp("projected", "out", out)
	return nil
}

// Simplify writes a vertex-reduced copy of the polygons into out.
func (f *FeatureClass) Simplify(ctx context.Context, out *FeatureClass, tolerance string) error {
	if err := f.cat.SimplifyPolygons(ctx, f.Path(), out.Path(), tolerance); err != nil {
		return err
	}
	f.logOp("simplified", "out", out.Path(), "tolerance", tolerance)
	return nil
}

// CopyFeaturesTo copies all features into out.
func (f *FeatureClass) CopyFeaturesTo(ctx context.Context, out *FeatureClass) error {
	if err := f.cat.CopyFeatures(ctx, f.Path(), out.Path()); err != nil {
		return err
	}
	f.logOp("copied features", "out", out.Path())
	return nil
}

// ReadGeometries materializes the features into a temporary feature
// class inside scratch and returns its handle. The caller owns the
// handle; Close releases the materialized copy.
func (f *FeatureClass) ReadGeometries(ctx context.Context, scratch string) (*FeatureClass, error) {
	out, err := NewFeatureClass(ctx, f.cat, "", Options{
		Name:      "Geometries",
		Temporary: true,
		Scratch:   scratch,
		Metrics:   f.metrics,
	}, f.logger)
	if err != nil {
		return nil, err
	}
	if err := f.cat.CopyFeatures(ctx, f.Path(), out.Path()); err != nil {
		out.Close()
		return nil, err
	}
	f.logOp("read geometries", "out", out.Path())
	return out, nil
}

// WriteGeometries copies the features of src into this feature class.
// It is the inverse of ReadGeometries: geometries materialized
// elsewhere land here.
func (f *FeatureClass) WriteGeometries(ctx context.Context, src *FeatureClass) error {
	if err := f.cat.CopyFeatures(ctx, src.Path(), f.Path()); err != nil {
		return err
	}
	f.logOp("wrote geometries", "src", src.Path())
	return nil
}

// SelectByLocation applies a spatial selection and returns the number
// of selected features.
func (f *FeatureClass) SelectByLocation(ctx context.Context, q output.LocationQuery) (int, error) {
	n, err := f.cat.SelectByLocation(ctx, f.Path(), q)
	if err != nil {
		return 0, err
	}
	f.logOp("selected by location", "relationship", q.Relationship, "selected", n)
	return n, nil
}
