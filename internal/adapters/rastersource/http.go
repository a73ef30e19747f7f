package rastersource

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// HTTPSource lists rasters published behind an HTTP(S) endpoint. The
// endpoint serves an index file naming one raster per line.
type HTTPSource struct {
	client    *http.Client
	baseURL   string
	indexFile string
	username  string
	password  string
}

// HTTPConfig holds HTTP source configuration.
type HTTPConfig struct {
	BaseURL   string
	IndexFile string // default: index.txt
	Timeout   time.Duration
	Username  string
	Password  string
}

// NewHTTPSource creates an HTTP-backed raster source.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	if cfg.IndexFile == "" {
		cfg.IndexFile = "index.txt"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Minute
	}

	return &HTTPSource{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		indexFile: cfg.IndexFile,
		username:  cfg.Username,
		password:  cfg.Password,
	}
}

// List returns the raster files named by the index file.
func (s *HTTPSource) List(ctx context.Context) ([]output.RasterObject, error) {
	indexURL := s.baseURL + "/" + s.indexFile

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, err
	}
	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching index file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index file returned status %d", resp.StatusCode)
	}

	// Parse index file (one filename per line)
	var objects []output.RasterObject
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !isRaster(line) {
			continue
		}
		objects = append(objects, output.RasterObject{Key: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}

	return objects, nil
}

// Exists checks if a file exists via HTTP HEAD request.
func (s *HTTPSource) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.Locator(key), nil)
	if err != nil {
		return false, err
	}
	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, nil //nolint:nilerr // intentionally ignoring error when connection fails
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK, nil
}

// Locator returns the full URL for a key.
func (s *HTTPSource) Locator(key string) string {
	return s.baseURL + "/" + key
}
