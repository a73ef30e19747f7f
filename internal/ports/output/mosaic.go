package output

import (
	"context"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

// AddRastersOptions configures adding items to a mosaic dataset.
type AddRastersOptions struct {
	UpdateCellSizeRanges bool
	UpdateBoundary       bool
	UpdateOverviews      bool
	DuplicateItemsAction string // ALLOW_DUPLICATES, EXCLUDE_DUPLICATES, OVERWRITE_DUPLICATES
	Filter               string
	SubFolders           bool
}

// RasterType names for AddRastersToMosaic.
const (
	RasterTypeDataset = "Raster Dataset"
	RasterTypeTable   = "Table"
)

// OverviewOptions configures a mosaic overview build pass.
type OverviewOptions struct {
	DefineMissingTiles    bool
	GenerateOverviews     bool
	GenerateMissingImages bool
	RegenerateStaleImages bool
}

// DefaultOverviewOptions returns the options used by the robust
// overview build: never redefine tiles, always regenerate.
func DefaultOverviewOptions() OverviewOptions {
	return OverviewOptions{
		GenerateOverviews:     true,
		GenerateMissingImages: true,
		RegenerateStaleImages: true,
	}
}

// ExportPathsQuery selects which item paths to export from a mosaic.
type ExportPathsQuery struct {
	Where      string
	ExportMode string // ALL or BROKEN
	PathTypes  string // RASTER, ITEM_CACHE, ALL
}

// SynchronizeOptions configures mosaic synchronization.
type SynchronizeOptions struct {
	UpdateWithNewItems bool
	SyncOnlyStale      bool
	UpdateCellSizes    bool
	UpdateBoundary     bool
	UpdateOverviews    bool
}

// MosaicCatalog is the full capability set a mosaic dataset needs.
type MosaicCatalog interface {
	VectorCatalog
	RasterCatalog

	CreateMosaicDataset(ctx context.Context, container, name, coordinateSystem string) error

	// CreateReferencedMosaic creates a separate mosaic from the items
	// of an existing one.
	CreateReferencedMosaic(ctx context.Context, src, dst string) error

	// MakeMosaicLayer creates an in-memory layer over a mosaic. The
	// layer exposes a Footprint feature table underneath it.
	MakeMosaicLayer(ctx context.Context, mosaic, layer string) error

	AddRastersToMosaic(ctx context.Context, mosaic, rasterType string, inputs []string, opts AddRastersOptions) error

	// RemoveRastersFromMosaic removes the currently selected items, or
	// the items matching where when the path carries no selection.
	RemoveRastersFromMosaic(ctx context.Context, mosaic, where string) error

	BuildFootprints(ctx context.Context, mosaic string) error
	BuildBoundary(ctx context.Context, mosaic string) error
	BuildMultidimensionalInfo(ctx context.Context, mosaic string, variables []string) error
	DefineOverviews(ctx context.Context, mosaic string, levels int, resampling string) error
	BuildOverviews(ctx context.Context, mosaic string, opts OverviewOptions) error
	CalculateCellSizeRanges(ctx context.Context, mosaic string) error

	// ExportMosaicGeometry writes footprint/boundary/seamline shapes
	// of a mosaic into a feature class.
	ExportMosaicGeometry(ctx context.Context, mosaic, dst, geometryType string) error

	// ImportMosaicGeometry replaces mosaic geometry of geometryType
	// from src, matching targetJoinField against srcJoinField.
	ImportMosaicGeometry(ctx context.Context, mosaic, geometryType, targetJoinField, src, srcJoinField string) error

	// ExportMosaicPaths writes a table of item file paths to dst.
	ExportMosaicPaths(ctx context.Context, mosaic, dst string, q ExportPathsQuery) error

	RepairMosaicPaths(ctx context.Context, mosaic string, remap []domain.PathRemap) error

	// SetMosaicProperties applies display/serving defaults to a mosaic
	// or mosaic layer; keys follow the catalog's property names.
	SetMosaicProperties(ctx context.Context, path string, props map[string]any) error

	SetRasterProperties(ctx context.Context, path string, props map[string]any) error
	GetRasterProperty(ctx context.Context, path, property string) (string, error)

	SynchronizeMosaic(ctx context.Context, mosaic string, opts SynchronizeOptions) error
}
