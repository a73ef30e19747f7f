package rastersource

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// S3Source lists rasters from an AWS S3 bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config holds S3 source configuration.
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Source creates an S3-backed raster source.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var opts []func(*config.LoadOptions) error

	opts = append(opts, config.WithRegion(cfg.Region))

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Source{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// List returns all raster objects under the bucket prefix.
func (s *S3Source) List(ctx context.Context) ([]output.RasterObject, error) {
	var objects []output.RasterObject

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isRaster(key) {
				continue
			}

			relKey := strings.TrimPrefix(key, s.prefix)
			relKey = strings.TrimPrefix(relKey, "/")

			objects = append(objects, output.RasterObject{
				Key:          relKey,
				Size:         aws.ToInt64(obj.Size),
				LastModified: obj.LastModified.Unix(),
			})
		}
	}

	return objects, nil
}

// Exists checks if an object exists in the bucket.
func (s *S3Source) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		return false, nil //nolint:nilerr // error indicates object doesn't exist, which is not an error condition for Exists
	}
	return true, nil
}

// Locator returns the s3:// URI the catalog engine reads the item
// through.
func (s *S3Source) Locator(key string) string {
	return "s3://" + s.bucket + "/" + s.fullKey(key)
}

// fullKey returns the full S3 key including prefix.
func (s *S3Source) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
