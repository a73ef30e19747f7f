package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// FeatureLayer is a selectable view over a feature class.
type FeatureLayer struct {
	*FeatureClass
}

// NewFeatureLayer opens a layer over an existing dataset. The dataset
// must already be present in the catalog.
func NewFeatureLayer(ctx context.Context, cat output.VectorCatalog, path string, logger *slog.Logger) (*FeatureLayer, error) {
	fc, err := NewFeatureClass(ctx, cat, path, Options{}, logger)
	if err != nil {
		return nil, err
	}
	exists, err := fc.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("layer source %s: %w", path, domain.ErrLayerNotFound)
	}
	return &FeatureLayer{FeatureClass: fc}, nil
}

// NewFeatureLayerFrom creates a layer named layer over the features of
// source, optionally restricted by a where clause.
func NewFeatureLayerFrom(ctx context.Context, cat output.VectorCatalog, source, layer, where string, logger *slog.Logger) (*FeatureLayer, error) {
	fc, err := NewFeatureClass(ctx, cat, layer, Options{}, logger)
	if err != nil {
		return nil, err
	}
	if err := cat.MakeFeatureLayer(ctx, source, fc.Path(), where); err != nil {
		return nil, err
	}
	fc.logOp("made feature layer", "source", source)
	return &FeatureLayer{FeatureClass: fc}, nil
}

// MosaicLayer is a selectable view over a mosaic dataset together with
// its Footprint feature table. The layer object itself is removed when
// the handle closes.
type MosaicLayer struct {
	name       string
	cat        output.MosaicCatalog
	footprints *FeatureLayer
	logger     *slog.Logger
	closed     bool
}

// NewMosaicLayer creates a layer named layer over the mosaic at path.
func NewMosaicLayer(ctx context.Context, cat output.MosaicCatalog, layer, mosaic string, logger *slog.Logger) (*MosaicLayer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cat.MakeMosaicLayer(ctx, mosaic, layer); err != nil {
		return nil, err
	}
	fp, err := NewFeatureLayer(ctx, cat, filepath.Join(layer, "Footprint"), logger)
	if err != nil {
		return nil, fmt.Errorf("footprint layer for %s: %w", layer, err)
	}
	logger.Info("made mosaic layer", "layer", layer, "mosaic", mosaic)
	return &MosaicLayer{name: layer, cat: cat, footprints: fp, logger: logger}, nil
}

// Name returns the layer name.
func (m *MosaicLayer) Name() string { return m.name }

// Footprints returns the footprint feature layer.
func (m *MosaicLayer) Footprints() *FeatureLayer { return m.footprints }

// SelectByAttribute selects footprint rows and returns the count.
func (m *MosaicLayer) SelectByAttribute(ctx context.Context, selectionType, where string) (int, error) {
	return m.footprints.SelectByAttribute(ctx, selectionType, where)
}

// SelectByLocation spatially selects footprint rows and returns the count.
func (m *MosaicLayer) SelectByLocation(ctx context.Context, q output.LocationQuery) (int, error) {
	return m.footprints.SelectByLocation(ctx, q)
}

// CalculateField assigns expression to a footprint field.
func (m *MosaicLayer) CalculateField(ctx context.Context, field, expression, where string) error {
	return m.footprints.CalculateField(ctx, field, expression, where)
}

// CalculateFields runs several footprint field calculations.
func (m *MosaicLayer) CalculateFields(ctx context.Context, calcs []FieldCalc, where string) error {
	return m.footprints.CalculateFields(ctx, calcs, where)
}

// CreateAndCalculateField adds a footprint field and populates it.
func (m *MosaicLayer) CreateAndCalculateField(ctx context.Context, field domain.Field, expression string) error {
	return m.footprints.CreateAndCalculateField(ctx, field, expression)
}

// AddField adds a footprint field.
func (m *MosaicLayer) AddField(ctx context.Context, field domain.Field) error {
	return m.footprints.AddField(ctx, field)
}

// AddFields adds several footprint fields.
func (m *MosaicLayer) AddFields(ctx context.Context, fields []domain.Field) error {
	return m.footprints.AddFields(ctx, fields)
}

// DeleteField drops footprint fields.
func (m *MosaicLayer) DeleteField(ctx context.Context, names ...string) error {
	return m.footprints.DeleteField(ctx, names...)
}

// FieldExists reports whether the footprint table has the field.
func (m *MosaicLayer) FieldExists(ctx context.Context, name string) (bool, error) {
	return m.footprints.FieldExists(ctx, name)
}

// JoinField joins fields from a table onto the footprints.
func (m *MosaicLayer) JoinField(ctx context.Context, inField string, join *Table, joinField string, fields []string) error {
	return m.footprints.JoinField(ctx, inField, join, joinField, fields)
}

// CopyFootprintsTo copies the footprint features into out.
func (m *MosaicLayer) CopyFootprintsTo(ctx context.Context, out *FeatureClass) error {
	return m.footprints.CopyFeaturesTo(ctx, out)
}

// Count returns the number of footprint rows in the current selection.
func (m *MosaicLayer) Count(ctx context.Context) (int, error) {
	return m.footprints.Count(ctx)
}

// CalculateStatistics computes statistics for the layer.
func (m *MosaicLayer) CalculateStatistics(ctx context.Context, opts output.StatisticsOptions) error {
	if err := m.cat.CalculateStatistics(ctx, m.name, opts); err != nil {
		return err
	}
	m.logger.Info("calculated statistics", "layer", m.name)
	return nil
}

// SetProperties applies mosaic display/serving defaults via the layer.
func (m *MosaicLayer) SetProperties(ctx context.Context, props map[string]any) error {
	if err := m.cat.SetMosaicProperties(ctx, m.name, props); err != nil {
		return err
	}
	m.logger.Info("set mosaic properties", "layer", m.name)
	return nil
}

// SetRasterProperties sets data type, statistics and NoData values.
func (m *MosaicLayer) SetRasterProperties(ctx context.Context, props map[string]any) error {
	if err := m.cat.SetRasterProperties(ctx, m.name, props); err != nil {
		return err
	}
	m.logger.Info("set raster properties", "layer", m.name)
	return nil
}

// GetRasterProperty reads a raster property from the layer.
func (m *MosaicLayer) GetRasterProperty(ctx context.Context, property string) (string, error) {
	return m.cat.GetRasterProperty(ctx, m.name, property)
}

// RepairPaths resets item source paths after data has moved.
func (m *MosaicLayer) RepairPaths(ctx context.Context, remap []domain.PathRemap) error {
	if err := m.cat.RepairMosaicPaths(ctx, m.name, remap); err != nil {
		return err
	}
	m.logger.Info("repaired paths", "layer", m.name, "mappings", len(remap))
	return nil
}

// Close removes the layer object from the catalog. Closing twice is a
// no-op.
func (m *MosaicLayer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	ctx := context.Background()
	exists, err := m.cat.Exists(ctx, m.name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return m.cat.Delete(ctx, m.name)
}
