package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/timing"
)

// Geometry types accepted by ExportGeometry and ImportGeometry.
const (
	GeometryFootprint = "FOOTPRINT"
	GeometryBoundary  = "BOUNDARY"
	GeometrySeamline  = "SEAMLINE"
)

// defaultCacheFactor scales the finest item cell size into the cache
// overview cell size.
const defaultCacheFactor = 5.0

// MosaicDataset is a handle over a mosaic dataset. Selection, field and
// property operations go through a lazily created mosaic layer so that
// they never mutate the dataset's persisted selection state.
type MosaicDataset struct {
	*Dataset
	cat     output.MosaicCatalog
	layer   *MosaicLayer
	scratch string
	prefix  string
}

// NewMosaicDataset builds a mosaic dataset handle from a locator.
func NewMosaicDataset(ctx context.Context, cat output.MosaicCatalog, locator string, opts Options, logger *slog.Logger) (*MosaicDataset, error) {
	if opts.Sanitize == nil {
		opts.Sanitize = domain.DefaultSanitizeMap()
	}
	d, err := newDataset(ctx, cat, locator, opts, logger)
	if err != nil {
		return nil, err
	}
	return &MosaicDataset{Dataset: d, cat: cat, scratch: opts.Scratch, prefix: opts.Prefix}, nil
}

// NewTempMosaicDataset builds a scratch-scoped mosaic dataset handle.
func NewTempMosaicDataset(ctx context.Context, cat output.MosaicCatalog, name, scratch string, logger *slog.Logger) (*MosaicDataset, error) {
	if name == "" {
		name = "TempMosaic"
	}
	return NewMosaicDataset(ctx, cat, "", Options{Name: name, Temporary: true, Scratch: scratch}, logger)
}

// Layer returns the mosaic layer, creating it on first use. The layer
// is named after the dataset and lives until the handle closes.
func (m *MosaicDataset) Layer(ctx context.Context) (*MosaicLayer, error) {
	if m.layer != nil {
		return m.layer, nil
	}
	ml, err := NewMosaicLayer(ctx, m.cat, m.Name()+"_Layer", m.Path(), m.logger)
	if err != nil {
		return nil, err
	}
	m.layer = ml
	return ml, nil
}

// Create builds the mosaic dataset in the catalog. An existing dataset
// at the path is reused rather than replaced. An empty coordinateSystem
// selects Web Mercator Auxiliary Sphere.
func (m *MosaicDataset) Create(ctx context.Context, coordinateSystem string) error {
	exists, err := m.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		m.logOp("mosaic dataset already exists")
		return nil
	}
	if coordinateSystem == "" {
		coordinateSystem = domain.WebMercatorAuxSphere
	}
	if err := m.cat.CreateMosaicDataset(ctx, m.Container(), m.Name(), coordinateSystem); err != nil {
		return err
	}
	m.logOp("created mosaic dataset")
	return nil
}

// CreateReference creates out as a referenced mosaic over this one's
// items.
func (m *MosaicDataset) CreateReference(ctx context.Context, out *MosaicDataset) error {
	if err := m.cat.CreateReferencedMosaic(ctx, m.Path(), out.Path()); err != nil {
		return err
	}
	m.logOp("created referenced mosaic", "reference", out.Path())
	return nil
}

// CreateTempReference creates a scratch-scoped referenced mosaic over
// this one. The caller owns the returned handle.
func (m *MosaicDataset) CreateTempReference(ctx context.Context, name string) (*MosaicDataset, error) {
	if name == "" {
		name = "TempReference"
	}
	ref, err := NewMosaicDataset(ctx, m.cat, "", Options{
		Name:      name,
		Temporary: true,
		Scratch:   m.scratch,
		Prefix:    m.prefix,
		Metrics:   m.metrics,
	}, m.logger)
	if err != nil {
		return nil, err
	}
	if err := m.CreateReference(ctx, ref); err != nil {
		ref.Close()
		return nil, err
	}
	return ref, nil
}

// AddRasters loads inputs of the given raster type into the mosaic.
func (m *MosaicDataset) AddRasters(ctx context.Context, rasterType string, inputs []string, opts output.AddRastersOptions) error {
	if err := m.cat.AddRastersToMosaic(ctx, m.Path(), rasterType, inputs, opts); err != nil {
		return err
	}
	m.logOp("added rasters", "type", rasterType, "inputs", len(inputs))
	return nil
}

// AddFromTables loads the items described by catalog tables.
func (m *MosaicDataset) AddFromTables(ctx context.Context, tables []*Table, opts output.AddRastersOptions) error {
	inputs := make([]string, len(tables))
	for i, t := range tables {
		inputs[i] = t.Path()
	}
	return m.AddRasters(ctx, output.RasterTypeTable, inputs, opts)
}

// AddFromMosaic loads the items of src into this mosaic. With
// excludeOverviews only primary items are taken.
func (m *MosaicDataset) AddFromMosaic(ctx context.Context, src *MosaicDataset, excludeOverviews bool, opts output.AddRastersOptions) error {
	input := src.Path()
	if excludeOverviews {
		ml, err := src.Layer(ctx)
		if err != nil {
			return err
		}
		if _, err := ml.SelectByAttribute(ctx, domain.NewSelection, domain.WherePrimaryRasters); err != nil {
			return err
		}
		input = ml.Name()
	}
	return m.AddRasters(ctx, output.RasterTypeTable, []string{input}, opts)
}

// RemoveRasters removes the items matching where.
func (m *MosaicDataset) RemoveRasters(ctx context.Context, where string) error {
	if err := m.cat.RemoveRastersFromMosaic(ctx, m.Path(), where); err != nil {
		return err
	}
	m.logOp("removed rasters", "where", where)
	return nil
}

// DeleteExternalRasters removes items whose footprints fall outside the
// boundary feature class, keeping anything within bufferDistance of it.
func (m *MosaicDataset) DeleteExternalRasters(ctx context.Context, boundary *FeatureClass, bufferDistance string) error {
	buffered, err := NewFeatureClass(ctx, m.cat, "", Options{
		Name:      "ExclusionBuffer",
		Temporary: true,
		Scratch:   m.scratch,
		Prefix:    m.prefix,
		Metrics:   m.metrics,
	}, m.logger)
	if err != nil {
		return err
	}
	defer buffered.Close()

	if err := boundary.Buffer(ctx, buffered, bufferDistance, output.BufferOptions{Dissolve: "ALL"}); err != nil {
		return err
	}

	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	if _, err := ml.SelectByLocation(ctx, output.LocationQuery{
		Relationship:  "INTERSECT",
		SelectPath:    buffered.Path(),
		SelectionType: domain.NewSelection,
	}); err != nil {
		return err
	}
	external, err := ml.SelectByAttribute(ctx, domain.SwitchSelection, "")
	if err != nil {
		return err
	}
	if external == 0 {
		m.logOp("no external rasters")
		return nil
	}
	if err := m.cat.RemoveRastersFromMosaic(ctx, ml.Name(), ""); err != nil {
		return err
	}
	m.logOp("deleted external rasters", "count", external)
	return nil
}

// BuildFootprints recomputes item footprints.
func (m *MosaicDataset) BuildFootprints(ctx context.Context) error {
	if err := m.cat.BuildFootprints(ctx, m.Path()); err != nil {
		return err
	}
	m.logOp("built footprints")
	return nil
}

// BuildBoundary recomputes the mosaic boundary from its footprints.
func (m *MosaicDataset) BuildBoundary(ctx context.Context) error {
	if err := m.cat.BuildBoundary(ctx, m.Path()); err != nil {
		return err
	}
	m.logOp("built boundary")
	return nil
}

// BuildMultidimensionalInfo builds the multidimensional metadata for
// the given variables; an empty slice covers every variable.
func (m *MosaicDataset) BuildMultidimensionalInfo(ctx context.Context, variables []string) error {
	if err := m.cat.BuildMultidimensionalInfo(ctx, m.Path(), variables); err != nil {
		return err
	}
	m.logOp("built multidimensional info", "variables", len(variables))
	return nil
}

// DefineOverviews defines overview tiling with the given number of
// levels and resampling method.
func (m *MosaicDataset) DefineOverviews(ctx context.Context, levels int, resampling string) error {
	if err := m.cat.DefineOverviews(ctx, m.Path(), levels, resampling); err != nil {
		return err
	}
	m.logOp("defined overviews", "levels", levels, "resampling", resampling)
	return nil
}

// CountUnbuiltOverviews returns the number of overview items that are
// missing or stale.
func (m *MosaicDataset) CountUnbuiltOverviews(ctx context.Context) (int, error) {
	ml, err := m.Layer(ctx)
	if err != nil {
		return 0, err
	}
	n, err := ml.SelectByAttribute(ctx, domain.NewSelection, domain.WhereUnbuiltOverviews)
	if err != nil {
		return 0, err
	}
	if _, err := ml.SelectByAttribute(ctx, domain.ClearSelection, ""); err != nil {
		return 0, err
	}
	return n, nil
}

// BuildOverviews runs one overview build pass and returns the number of
// overview items still unbuilt afterwards.
func (m *MosaicDataset) BuildOverviews(ctx context.Context, opts output.OverviewOptions) (int, error) {
	before, err := m.CountUnbuiltOverviews(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.cat.BuildOverviews(ctx, m.Path(), opts); err != nil {
		return 0, err
	}
	after, err := m.CountUnbuiltOverviews(ctx)
	if err != nil {
		return 0, err
	}
	if after > 0 {
		m.logger.Warn("overview build left unbuilt items", "path", m.Path(), "before", before, "after", after)
	} else {
		m.logOp("built overviews", "before", before)
	}
	return after, nil
}

// DeleteBadOverviews removes unbuilt overview items from the mosaic and
// their raster artifacts from the catalog.
func (m *MosaicDataset) DeleteBadOverviews(ctx context.Context) error {
	bad, err := NewFeatureClass(ctx, m.cat, "", Options{
		Name:      "BadOverviews",
		Temporary: true,
		Scratch:   m.scratch,
		Prefix:    m.prefix,
		Metrics:   m.metrics,
	}, m.logger)
	if err != nil {
		return err
	}
	defer bad.Close()

	if err := m.cat.ExportMosaicPaths(ctx, m.Path(), bad.Path(), output.ExportPathsQuery{
		Where:      domain.WhereUnbuiltOverviews,
		ExportMode: "ALL",
		PathTypes:  "RASTER",
	}); err != nil {
		return err
	}
	if err := bad.DeleteIdentical(ctx, "SourceID"); err != nil {
		return err
	}

	cursor, err := bad.SearchRows(ctx, []string{"Path"}, "")
	if err != nil {
		return err
	}
	defer cursor.Close()

	deleted := 0
	for cursor.Next() {
		var path string
		if err := cursor.Scan(&path); err != nil {
			return err
		}
		if err := m.cat.Delete(ctx, path); err != nil {
			return &domain.DeleteError{Path: path, Err: err}
		}
		deleted++
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	if err := m.RemoveRasters(ctx, domain.WhereUnbuiltOverviews); err != nil {
		return err
	}
	m.logOp("deleted bad overviews", "artifacts", deleted)
	return nil
}

// BuildOverviewsRobust builds overviews and, while unbuilt items
// remain, deletes the failed items and rebuilds, up to maxRetries total
// attempts. It returns the number of attempts made; exhausting them
// with items still unbuilt returns an OverviewBuildError.
func (m *MosaicDataset) BuildOverviewsRobust(ctx context.Context, maxRetries int) (int, error) {
	stop := timing.Track("build overviews "+m.Name(), m.logger)
	defer stop()

	opts := output.DefaultOverviewOptions()
	unbuilt, err := m.BuildOverviews(ctx, opts)
	if err != nil {
		return 1, err
	}

	retry := 1
	for unbuilt > 0 && retry < maxRetries {
		m.logger.Warn("retrying overview build", "path", m.Path(), "unbuilt", unbuilt, "attempt", retry+1, "max_retries", maxRetries)
		if err := m.DeleteBadOverviews(ctx); err != nil {
			return retry, err
		}
		unbuilt, err = m.BuildOverviews(ctx, opts)
		if err != nil {
			return retry + 1, err
		}
		retry++
	}
	if unbuilt > 0 {
		return retry, &domain.OverviewBuildError{Mosaic: m.Path(), Unbuilt: unbuilt, Attempts: retry}
	}
	return retry, nil
}

// BuildCacheOverview builds a single cached overview raster covering
// the whole mosaic and registers it as an overview item. The overview
// cell size is the finest primary item cell size scaled by factor;
// factor values of zero or less use the default.
func (m *MosaicDataset) BuildCacheOverview(ctx context.Context, container string, factor float64) error {
	stop := timing.Track("build cache overview "+m.Name(), m.logger)
	defer stop()

	if factor <= 0 {
		factor = defaultCacheFactor
	}

	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}

	minLowPS, err := m.minimumLowPS(ctx, ml)
	if err != nil {
		return err
	}
	cellSize := minLowPS * factor

	ovName := m.Name() + "_cache"
	dst := filepath.Join(container, ovName+".crf")
	if err := m.cat.CopyRaster(ctx, m.Path(), dst, output.RasterCopyOptions{
		CellSize: cellSize,
		Format:   "CRF",
	}); err != nil {
		return err
	}
	if err := m.AddRasters(ctx, output.RasterTypeDataset, []string{dst}, output.AddRastersOptions{}); err != nil {
		return err
	}

	// The new item arrives as a primary raster. Reclassify it as an
	// overview serving everything above its own cell size.
	if err := m.reclassifyCacheItem(ctx, ml, ovName); err != nil {
		return err
	}

	// Primary items stop serving where the cache overview takes over.
	if err := ml.CalculateField(ctx, "MaxPS", strconv.FormatFloat(cellSize, 'f', -1, 64), domain.WherePrimaryRasters); err != nil {
		return err
	}
	m.logOp("built cache overview", "cache", dst, "cell_size", cellSize)
	return nil
}

// minimumLowPS scans the primary items for the finest cell size.
func (m *MosaicDataset) minimumLowPS(ctx context.Context, ml *MosaicLayer) (float64, error) {
	cursor, err := ml.Footprints().SearchRows(ctx, []string{"LowPS"}, domain.WherePrimaryRasters)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	min := 0.0
	found := false
	for cursor.Next() {
		var lowPS float64
		if err := cursor.Scan(&lowPS); err != nil {
			return 0, err
		}
		if !found || lowPS < min {
			min = lowPS
			found = true
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("mosaic %s has no primary items: %w", m.Path(), domain.ErrInvalidInput)
	}
	return min, nil
}

// reclassifyCacheItem turns the freshly added cache raster into an
// overview item: MinPS from its own LowPS, MaxPS open-ended.
func (m *MosaicDataset) reclassifyCacheItem(ctx context.Context, ml *MosaicLayer, name string) error {
	where := fmt.Sprintf("Name = '%s'", name)
	cursor, err := ml.Footprints().UpdateRows(ctx, []string{"LowPS", "MinPS", "MaxPS", "Category"}, where)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for cursor.Next() {
		var lowPS, minPS, maxPS float64
		var category int
		if err := cursor.Scan(&lowPS, &minPS, &maxPS, &category); err != nil {
			return err
		}
		if err := cursor.Update(lowPS, lowPS, 10000.0, domain.CategoryOverview); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// CalculateCellSizeRanges recomputes item MinPS/MaxPS ranges.
func (m *MosaicDataset) CalculateCellSizeRanges(ctx context.Context) error {
	if err := m.cat.CalculateCellSizeRanges(ctx, m.Path()); err != nil {
		return err
	}
	m.logOp("calculated cell size ranges")
	return nil
}

// SetMinPS assigns the minimum visible cell size of the primary items.
func (m *MosaicDataset) SetMinPS(ctx context.Context, value float64) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.CalculateField(ctx, "MinPS", strconv.FormatFloat(value, 'f', -1, 64), domain.WherePrimaryRasters)
}

// SetMaxPS assigns the maximum visible cell size of the primary items.
func (m *MosaicDataset) SetMaxPS(ctx context.Context, value float64) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.CalculateField(ctx, "MaxPS", strconv.FormatFloat(value, 'f', -1, 64), domain.WherePrimaryRasters)
}

// ExportGeometry writes footprint, boundary or seamline shapes into out.
func (m *MosaicDataset) ExportGeometry(ctx context.Context, out *FeatureClass, geometryType string) error {
	if err := m.cat.ExportMosaicGeometry(ctx, m.Path(), out.Path(), geometryType); err != nil {
		return err
	}
	m.logOp("exported geometry", "geometry", geometryType, "to", out.Path())
	return nil
}

// ImportGeometry replaces mosaic geometry of geometryType from src,
// matching targetJoinField against srcJoinField. Importing footprints
// rebuilds the boundary afterwards.
func (m *MosaicDataset) ImportGeometry(ctx context.Context, geometryType, targetJoinField string, src *FeatureClass, srcJoinField string) error {
	if err := m.cat.ImportMosaicGeometry(ctx, m.Path(), geometryType, targetJoinField, src.Path(), srcJoinField); err != nil {
		return err
	}
	m.logOp("imported geometry", "geometry", geometryType, "from", src.Path())
	if geometryType == GeometryFootprint {
		return m.BuildBoundary(ctx)
	}
	return nil
}

// ImportClippedFootprints imports footprints from src after clipping
// them to the current mosaic boundary, so imported shapes never extend
// past the data.
func (m *MosaicDataset) ImportClippedFootprints(ctx context.Context, targetJoinField string, src *FeatureClass, srcJoinField string) error {
	boundary, err := NewFeatureClass(ctx, m.cat, "", Options{
		Name:      "Boundary",
		Temporary: true,
		Scratch:   m.scratch,
		Prefix:    m.prefix,
		Metrics:   m.metrics,
	}, m.logger)
	if err != nil {
		return err
	}
	defer boundary.Close()

	if err := m.ExportGeometry(ctx, boundary, GeometryBoundary); err != nil {
		return err
	}

	clipped, err := NewFeatureClass(ctx, m.cat, "", Options{
		Name:      "ClippedFootprints",
		Temporary: true,
		Scratch:   m.scratch,
		Prefix:    m.prefix,
		Metrics:   m.metrics,
	}, m.logger)
	if err != nil {
		return err
	}
	defer clipped.Close()

	if err := src.Clip(ctx, boundary, clipped); err != nil {
		return err
	}
	return m.ImportGeometry(ctx, GeometryFootprint, targetJoinField, clipped, srcJoinField)
}

// ExportPaths writes a table of item file paths into out.
func (m *MosaicDataset) ExportPaths(ctx context.Context, out *Table, q output.ExportPathsQuery) error {
	if err := m.cat.ExportMosaicPaths(ctx, m.Path(), out.Path(), q); err != nil {
		return err
	}
	m.logOp("exported paths", "to", out.Path())
	return nil
}

// RepairPaths resets item source paths after data has moved.
func (m *MosaicDataset) RepairPaths(ctx context.Context, remap []domain.PathRemap) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.RepairPaths(ctx, remap)
}

// SetProperties applies display/serving defaults to the mosaic.
func (m *MosaicDataset) SetProperties(ctx context.Context, props map[string]any) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.SetProperties(ctx, props)
}

// SetRasterProperties sets data type, statistics and NoData values.
func (m *MosaicDataset) SetRasterProperties(ctx context.Context, props map[string]any) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.SetRasterProperties(ctx, props)
}

// GetRasterProperty reads a raster property of the mosaic.
func (m *MosaicDataset) GetRasterProperty(ctx context.Context, property string) (string, error) {
	ml, err := m.Layer(ctx)
	if err != nil {
		return "", err
	}
	return ml.GetRasterProperty(ctx, property)
}

// Synchronize refreshes items from their sources.
func (m *MosaicDataset) Synchronize(ctx context.Context, opts output.SynchronizeOptions) error {
	if err := m.cat.SynchronizeMosaic(ctx, m.Path(), opts); err != nil {
		return err
	}
	m.logOp("synchronized mosaic")
	return nil
}

// CalculateStatistics computes statistics for the mosaic.
func (m *MosaicDataset) CalculateStatistics(ctx context.Context, opts output.StatisticsOptions) error {
	ml, err := m.Layer(ctx)
	if err != nil {
		return err
	}
	return ml.CalculateStatistics(ctx, opts)
}

// CopyTo copies the mosaic into a raster dataset at dst.
func (m *MosaicDataset) CopyTo(ctx context.Context, dst string, opts output.RasterCopyOptions) error {
	if err := m.cat.CopyRaster(ctx, m.Path(), dst, opts); err != nil {
		return err
	}
	m.logOp("copied raster", "to", dst)
	return nil
}

// Close releases the layer, then the dataset itself. A temporary
// mosaic is deleted exactly once.
func (m *MosaicDataset) Close() error {
	if m.layer != nil {
		if err := m.layer.Close(); err != nil {
			return err
		}
		m.layer = nil
	}
	return m.Dataset.Close()
}
