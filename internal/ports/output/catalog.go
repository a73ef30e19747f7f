// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

// Workspace is the base capability every dataset handle needs: the
// catalog's view of existence, deletion, naming and description.
type Workspace interface {
	// Exists reports whether a dataset is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the dataset at path. Deleting a missing dataset
	// is not an error; a genuine failure is.
	Delete(ctx context.Context, path string) error

	// UniqueName returns a collision-free variant of name inside
	// container.
	UniqueName(ctx context.Context, name, container string) (string, error)

	// Describe returns the catalog's description of the dataset.
	Describe(ctx context.Context, path string) (*domain.DatasetInfo, error)

	// List enumerates the datasets inside a container.
	List(ctx context.Context, container string) ([]domain.DatasetInfo, error)
}

// RowCursor is a finite, read-only, non-restartable cursor over rows.
// It follows the database/sql iteration shape.
type RowCursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// UpdateCursor is a read-write cursor. Update rewrites the fields of
// the current row in cursor field order; DeleteRow removes it.
type UpdateCursor interface {
	RowCursor
	Update(values ...any) error
	DeleteRow() error
}

// TableOptions configures table creation.
type TableOptions struct {
	Template string         // Path of a dataset whose schema is copied
	Fields   []domain.Field // Fields to create, ignored with Template
}

// IndexOptions configures attribute index creation.
type IndexOptions struct {
	Name      string
	Unique    bool
	Ascending bool
}

// TableCatalog provides tabular dataset capabilities on top of the
// base workspace.
type TableCatalog interface {
	Workspace

	CreateTable(ctx context.Context, container, name string, opts TableOptions) error
	RowCount(ctx context.Context, path string) (int, error)
	ListFields(ctx context.Context, path string) ([]domain.Field, error)
	AddField(ctx context.Context, path string, field domain.Field) error
	DeleteField(ctx context.Context, path string, fields ...string) error
	AddIndex(ctx context.Context, path string, fields []string, opts IndexOptions) error

	// CalculateField assigns expression (a catalog expression over the
	// row's fields) to field for every row matching where; an empty
	// where updates all rows.
	CalculateField(ctx context.Context, path, field, expression, where string) error

	// SelectByAttribute applies a selection and returns the number of
	// selected rows.
	SelectByAttribute(ctx context.Context, path, selectionType, where string) (int, error)

	// JoinField permanently joins fields from joinPath onto path,
	// matching inField against joinField.
	JoinField(ctx context.Context, path, inField, joinPath, joinField string, fields []string) error

	// Sort writes the rows of src into dst ordered by orderBy.
	Sort(ctx context.Context, src, dst string, orderBy []domain.SortField) error

	// DeleteIdentical removes rows duplicated across the given fields,
	// keeping the first occurrence.
	DeleteIdentical(ctx context.Context, path string, fields []string) error

	CopyRows(ctx context.Context, src, dst string) error
	SearchRows(ctx context.Context, path string, fields []string, where string) (RowCursor, error)
	UpdateRows(ctx context.Context, path string, fields []string, where string) (UpdateCursor, error)
	InsertRows(ctx context.Context, path string, fields []string, rows [][]any) error
}

// FeatureClassOptions configures feature class creation.
type FeatureClassOptions struct {
	GeometryType     string // POINT, POLYLINE, POLYGON, ...
	SpatialReference string
	Template         string
	Fields           []domain.Field
}

// BufferOptions configures buffer geometry generation.
type BufferOptions struct {
	LineSide    string // FULL, LEFT, RIGHT, OUTSIDE_ONLY
	LineEndType string // ROUND, FLAT
	Dissolve    string // NONE, ALL, LIST
}

// ProjectOptions configures coordinate system projection.
type ProjectOptions struct {
	OutCS         string // Target coordinate system (required)
	Transform     string // Geographic transformation, optional
	InCS          string // Override for the source CS, optional
	PreserveShape bool
}

// LocationQuery describes a select-by-location request.
type LocationQuery struct {
	Relationship   string // INTERSECT, COMPLETELY_WITHIN, ...
	SelectPath     string // Dataset supplying the selecting features
	SearchDistance string
	SelectionType  string // NEW_SELECTION, ADD_TO_SELECTION, ...
}

// VectorCatalog adds geometry capabilities to the tabular catalog.
type VectorCatalog interface {
	TableCatalog

	CreateFeatureClass(ctx context.Context, container, name string, opts FeatureClassOptions) error
	Buffer(ctx context.Context, src, dst, distance string, opts BufferOptions) error
	Clip(ctx context.Context, src, clip, dst string) error
	Erase(ctx context.Context, src, erase, dst string) error
	Project(ctx context.Context, src, dst string, opts ProjectOptions) error

	// SimplifyPolygons removes extraneous vertices within tolerance
	// while preserving essential shape.
	SimplifyPolygons(ctx context.Context, src, dst, tolerance string) error

	CopyFeatures(ctx context.Context, src, dst string) error
	SelectByLocation(ctx context.Context, path string, q LocationQuery) (int, error)

	// MakeFeatureLayer creates an in-memory layer over src, optionally
	// restricted by a where clause.
	MakeFeatureLayer(ctx context.Context, src, layer, where string) error
}

// RasterCopyOptions configures raster copies.
type RasterCopyOptions struct {
	CellSize      float64 // Output cell size, 0 keeps the source size
	PyramidLevels int     // -1 builds all levels
	Format        string  // Output format hint, optional
}

// StatisticsOptions configures statistics calculation.
type StatisticsOptions struct {
	SkipFactorX int
	SkipFactorY int
}

// RasterCatalog provides raster dataset capabilities.
type RasterCatalog interface {
	Workspace

	CopyRaster(ctx context.Context, src, dst string, opts RasterCopyOptions) error
	CalculateStatistics(ctx context.Context, path string, opts StatisticsOptions) error
}
