package catalog

import (
	"context"
	"fmt"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// unsupportedGeoprocessing rejects every geometry, raster and mosaic
// operation. The SQLite catalog embeds it so the tabular adapter still
// satisfies the full mosaic capability set; geoprocessing runs against
// a workspace backed by a real engine instead.
type unsupportedGeoprocessing struct{}

func unsupported(operation, path string) error {
	return &domain.CatalogError{
		Operation: operation,
		Path:      path,
		Err:       fmt.Errorf("sqlite catalog: %w", domain.ErrUnsupported),
	}
}

func (unsupportedGeoprocessing) CreateFeatureClass(_ context.Context, container, name string, _ output.FeatureClassOptions) error {
	return unsupported("create-feature-class", container+"/"+name)
}

func (unsupportedGeoprocessing) Buffer(_ context.Context, src, _, _ string, _ output.BufferOptions) error {
	return unsupported("buffer", src)
}

func (unsupportedGeoprocessing) Clip(_ context.Context, src, _, _ string) error {
	return unsupported("clip", src)
}

func (unsupportedGeoprocessing) Erase(_ context.Context, src, _, _ string) error {
	return unsupported("erase", src)
}

func (unsupportedGeoprocessing) Project(_ context.Context, src, _ string, _ output.ProjectOptions) error {
	return unsupported("project", src)
}

func (unsupportedGeoprocessing) SimplifyPolygons(_ context.Context, src, _, _ string) error {
	return unsupported("simplify-polygons", src)
}

func (unsupportedGeoprocessing) CopyFeatures(_ context.Context, src, _ string) error {
	return unsupported("copy-features", src)
}

func (unsupportedGeoprocessing) SelectByLocation(_ context.Context, path string, _ output.LocationQuery) (int, error) {
	return 0, unsupported("select-by-location", path)
}

func (unsupportedGeoprocessing) MakeFeatureLayer(_ context.Context, src, _, _ string) error {
	return unsupported("make-feature-layer", src)
}

func (unsupportedGeoprocessing) CopyRaster(_ context.Context, src, _ string, _ output.RasterCopyOptions) error {
	return unsupported("copy-raster", src)
}

func (unsupportedGeoprocessing) CalculateStatistics(_ context.Context, path string, _ output.StatisticsOptions) error {
	return unsupported("calculate-statistics", path)
}

func (unsupportedGeoprocessing) CreateMosaicDataset(_ context.Context, container, name, _ string) error {
	return unsupported("create-mosaic", container+"/"+name)
}

func (unsupportedGeoprocessing) CreateReferencedMosaic(_ context.Context, src, _ string) error {
	return unsupported("create-referenced-mosaic", src)
}

func (unsupportedGeoprocessing) MakeMosaicLayer(_ context.Context, mosaic, _ string) error {
	return unsupported("make-mosaic-layer", mosaic)
}

func (unsupportedGeoprocessing) AddRastersToMosaic(_ context.Context, mosaic, _ string, _ []string, _ output.AddRastersOptions) error {
	return unsupported("add-rasters", mosaic)
}

func (unsupportedGeoprocessing) RemoveRastersFromMosaic(_ context.Context, mosaic, _ string) error {
	return unsupported("remove-rasters", mosaic)
}

func (unsupportedGeoprocessing) BuildFootprints(_ context.Context, mosaic string) error {
	return unsupported("build-footprints", mosaic)
}

func (unsupportedGeoprocessing) BuildBoundary(_ context.Context, mosaic string) error {
	return unsupported("build-boundary", mosaic)
}

func (unsupportedGeoprocessing) BuildMultidimensionalInfo(_ context.Context, mosaic string, _ []string) error {
	return unsupported("build-multidimensional-info", mosaic)
}

func (unsupportedGeoprocessing) DefineOverviews(_ context.Context, mosaic string, _ int, _ string) error {
	return unsupported("define-overviews", mosaic)
}

func (unsupportedGeoprocessing) BuildOverviews(_ context.Context, mosaic string, _ output.OverviewOptions) error {
	return unsupported("build-overviews", mosaic)
}

func (unsupportedGeoprocessing) CalculateCellSizeRanges(_ context.Context, mosaic string) error {
	return unsupported("calculate-cell-size-ranges", mosaic)
}

func (unsupportedGeoprocessing) ExportMosaicGeometry(_ context.Context, mosaic, _, _ string) error {
	return unsupported("export-mosaic-geometry", mosaic)
}

func (unsupportedGeoprocessing) ImportMosaicGeometry(_ context.Context, mosaic, _, _, _, _ string) error {
	return unsupported("import-mosaic-geometry", mosaic)
}

func (unsupportedGeoprocessing) ExportMosaicPaths(_ context.Context, mosaic, _ string, _ output.ExportPathsQuery) error {
	return unsupported("export-mosaic-paths", mosaic)
}

func (unsupportedGeoprocessing) RepairMosaicPaths(_ context.Context, mosaic string, _ []domain.PathRemap) error {
	return unsupported("repair-mosaic-paths", mosaic)
}

func (unsupportedGeoprocessing) SetMosaicProperties(_ context.Context, path string, _ map[string]any) error {
	return unsupported("set-mosaic-properties", path)
}

func (unsupportedGeoprocessing) SetRasterProperties(_ context.Context, path string, _ map[string]any) error {
	return unsupported("set-raster-properties", path)
}

func (unsupportedGeoprocessing) GetRasterProperty(_ context.Context, path, _ string) (string, error) {
	return "", unsupported("get-raster-property", path)
}

func (unsupportedGeoprocessing) SynchronizeMosaic(_ context.Context, mosaic string, _ output.SynchronizeOptions) error {
	return unsupported("synchronize", mosaic)
}

// compile-time capability check
var _ output.MosaicCatalog = (*SQLiteCatalog)(nil)
