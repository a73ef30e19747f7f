package rastersource

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// AzureSource lists rasters from an Azure Blob Storage container.
type AzureSource struct {
	client    *azblob.Client
	container string
	prefix    string
}

// AzureConfig holds Azure Blob Storage source configuration.
type AzureConfig struct {
	Container        string
	AccountName      string
	AccountKey       string
	ConnectionString string
	Prefix           string
}

// NewAzureSource creates an Azure-backed raster source.
func NewAzureSource(cfg AzureConfig) (*AzureSource, error) {
	var client *azblob.Client
	var err error

	if cfg.ConnectionString != "" {
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, err
		}
	} else {
		url := "https://" + cfg.AccountName + ".blob.core.windows.net/"
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, err
		}
		client, err = azblob.NewClientWithSharedKeyCredential(url, cred, nil)
		if err != nil {
			return nil, err
		}
	}

	return &AzureSource{
		client:    client,
		container: cfg.Container,
		prefix:    cfg.Prefix,
	}, nil
}

// List returns all raster blobs under the container prefix.
func (s *AzureSource) List(ctx context.Context) ([]output.RasterObject, error) {
	var objects []output.RasterObject

	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &s.prefix,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, blob := range page.Segment.BlobItems {
			obj, ok := s.blobToRasterObject(blob)
			if ok {
				objects = append(objects, obj)
			}
		}
	}

	return objects, nil
}

// blobToRasterObject converts an Azure blob to a RasterObject. Returns
// false when the blob is not a raster file.
func (s *AzureSource) blobToRasterObject(blob *container.BlobItem) (output.RasterObject, bool) {
	name := *blob.Name
	if !isRaster(name) {
		return output.RasterObject{}, false
	}

	relKey := strings.TrimPrefix(name, s.prefix)
	relKey = strings.TrimPrefix(relKey, "/")

	obj := output.RasterObject{Key: relKey}
	if blob.Properties != nil {
		if blob.Properties.ContentLength != nil {
			obj.Size = *blob.Properties.ContentLength
		}
		if blob.Properties.LastModified != nil {
			obj.LastModified = blob.Properties.LastModified.Unix()
		}
	}
	return obj, true
}

// Exists checks if a blob exists in the container.
func (s *AzureSource) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.DownloadStream(ctx, s.container, s.fullKey(key), &azblob.DownloadStreamOptions{
		Range: azblob.HTTPRange{Offset: 0, Count: 1},
	})
	if err != nil {
		return false, nil //nolint:nilerr // error indicates blob doesn't exist, which is not an error condition for Exists
	}
	return true, nil
}

// Locator returns the blob URL the catalog engine reads the item
// through.
func (s *AzureSource) Locator(key string) string {
	return strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + s.fullKey(key)
}

// fullKey returns the full blob name including prefix.
func (s *AzureSource) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
