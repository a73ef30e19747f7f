package domain

// DatasetKind classifies a catalog dataset.
type DatasetKind string

// Dataset kinds.
const (
	KindTable        DatasetKind = "Table"
	KindFeatureClass DatasetKind = "FeatureClass"
	KindRaster       DatasetKind = "RasterDataset"
	KindMosaic       DatasetKind = "MosaicDataset"
	KindLayer        DatasetKind = "Layer"
)

// FieldType is the storage type of an attribute field.
type FieldType string

// Field types understood by the catalog.
const (
	FieldText   FieldType = "TEXT"
	FieldShort  FieldType = "SHORT"
	FieldLong   FieldType = "LONG"
	FieldFloat  FieldType = "FLOAT"
	FieldDouble FieldType = "DOUBLE"
	FieldDate   FieldType = "DATE"
	FieldBlob   FieldType = "BLOB"
	FieldGUID   FieldType = "GUID"
)

// Field describes an attribute field of a tabular dataset.
type Field struct {
	Name     string    // Field name
	Type     FieldType // Storage type
	Alias    string    // Display alias (optional)
	Length   int       // Text length, 0 for default
	Nullable bool      // Whether NULL values are allowed
}

// SortField pairs a field with a sort direction.
type SortField struct {
	Name       string
	Descending bool
}

// Extent is an axis-aligned bounding box.
type Extent struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// IsZero returns true for an unset extent.
func (e Extent) IsZero() bool {
	return e.XMin == 0 && e.YMin == 0 && e.XMax == 0 && e.YMax == 0
}

// DatasetInfo is the catalog's description of a dataset.
type DatasetInfo struct {
	Path             string      // Full catalog path
	Kind             DatasetKind // Dataset kind
	SpatialReference string      // Coordinate system, WKT or empty
	Extent           Extent      // Bounding box, zero for tables
	Fields           []Field     // Attribute fields
	RowCount         int64       // Row/item count, -1 when unknown
}

// Selection types for attribute and location queries.
const (
	NewSelection        = "NEW_SELECTION"
	AddToSelection      = "ADD_TO_SELECTION"
	RemoveFromSelection = "REMOVE_FROM_SELECTION"
	SubsetSelection     = "SUBSET_SELECTION"
	SwitchSelection     = "SWITCH_SELECTION"
	ClearSelection      = "CLEAR_SELECTION"
)

// Mosaic item categories. The footprint table tags every item with a
// category; anything above overview is an incomplete or stale artifact.
const (
	CategoryPrimary  = 1
	CategoryOverview = 2
)

// WhereUnbuiltOverviews selects incomplete or stale overview items in a
// mosaic footprint table.
const WhereUnbuiltOverviews = "Category > 2"

// WherePrimaryRasters selects source (non-overview) items.
const WherePrimaryRasters = "Category = 1"

// WebMercatorAuxSphere is the default coordinate system for new mosaic
// datasets, as a catalog spatial-reference string.
const WebMercatorAuxSphere = "PROJCS['WGS_1984_Web_Mercator_Auxiliary_Sphere'," +
	"GEOGCS['GCS_WGS_1984',DATUM['D_WGS_1984',SPHEROID['WGS_1984',6378137.0,298.257223563]]]," +
	"PRIMEM['Greenwich',0.0],UNIT['Degree',0.0174532925199433]]," +
	"PROJECTION['Mercator_Auxiliary_Sphere']," +
	"PARAMETER['False_Easting',0.0],PARAMETER['False_Northing',0.0]," +
	"PARAMETER['Central_Meridian',0.0],PARAMETER['Standard_Parallel_1',0.0]," +
	"PARAMETER['Auxiliary_Sphere_Type',0.0],UNIT['Meter',1.0]]"

// PathRemap is an old-path/new-path pair for repairing mosaic item paths.
type PathRemap struct {
	Old string
	New string
}
