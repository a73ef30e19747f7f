// Package rastersource provides the raster source backends a mosaic
// dataset is populated from. Sources only enumerate candidate rasters;
// the catalog engine reads the items in place via their locators.
package rastersource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// rasterExtensions lists the file extensions accepted as mosaic items.
var rasterExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".jp2":  true,
	".crf":  true,
	".img":  true,
}

// isRaster reports whether a key names a raster file.
func isRaster(key string) bool {
	return rasterExtensions[strings.ToLower(filepath.Ext(key))]
}

// LocalSource lists rasters from a local directory tree.
type LocalSource struct {
	root string
}

// NewLocalSource creates a source rooted at a local directory.
func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// List walks the root and returns every raster file beneath it.
func (s *LocalSource) List(ctx context.Context) ([]output.RasterObject, error) {
	var objects []output.RasterObject

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !isRaster(info.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		objects = append(objects, output.RasterObject{
			Key:          relPath,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return objects, nil
}

// Exists checks if a file exists under the root.
func (s *LocalSource) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Locator returns the full filesystem path for a key.
func (s *LocalSource) Locator(key string) string {
	return filepath.Join(s.root, key)
}
