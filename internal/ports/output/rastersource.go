package output

import "context"

// RasterObject is a candidate raster discovered in a source.
type RasterObject struct {
	Key          string // Key/path relative to the source root
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
}

// RasterSource lists rasters that can be added to a mosaic dataset.
// Sources never move data; the catalog engine reads items in place via
// the locator returned by Locator.
type RasterSource interface {
	// List returns all raster objects in the source.
	List(ctx context.Context) ([]RasterObject, error)

	// Exists checks whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Locator converts a key into a path the catalog engine can read.
	Locator(key string) string
}

// SourceType represents the kind of raster source backend.
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeS3    SourceType = "s3"
	SourceTypeAzure SourceType = "azure"
	SourceTypeHTTP  SourceType = "http"
)
