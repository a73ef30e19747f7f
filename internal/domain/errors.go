package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
)

// Specific errors.
var (
	ErrDatasetNotFound = fmt.Errorf("dataset: %w", ErrNotFound)
	ErrLayerNotFound   = fmt.Errorf("layer: %w", ErrNotFound)
	ErrFieldNotFound   = fmt.Errorf("field: %w", ErrNotFound)
	ErrInvalidName     = fmt.Errorf("name: %w", ErrInvalidInput)
	ErrHandleClosed    = fmt.Errorf("dataset handle closed: %w", ErrInvalidInput)
)

// DeleteError reports that the backing store still holds a dataset
// after a delete request. Temporary-dataset construction treats this
// as fatal; explicit deletes surface it to the caller.
type DeleteError struct {
	Path string // Full path of the dataset
	Err  error  // Underlying error, if the store reported one
}

// Error implements the error interface.
func (e *DeleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delete failed for %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s still exists after delete", e.Path)
}

// Unwrap returns the underlying error type.
func (e *DeleteError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInternal
}

// OverviewBuildError reports that the overview retry budget was
// exhausted with unbuilt overviews remaining.
type OverviewBuildError struct {
	Mosaic   string // Mosaic dataset path
	Unbuilt  int    // Overviews still unbuilt after the last attempt
	Attempts int    // Build attempts made
}

// Error implements the error interface.
func (e *OverviewBuildError) Error() string {
	return fmt.Sprintf("mosaic %s: %d overviews still unbuilt after %d attempts",
		e.Mosaic, e.Unbuilt, e.Attempts)
}

// Unwrap returns the underlying error type.
func (e *OverviewBuildError) Unwrap() error {
	return ErrInternal
}

// CatalogError wraps a failure reported by the backing store for a
// single geoprocessing or catalog operation.
type CatalogError struct {
	Operation string // Operation that failed (create, buffer, ...)
	Path      string // Dataset path the operation ran against
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("catalog error during %s on %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("catalog error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// SourceError wraps a failure from a raster source backend.
type SourceError struct {
	Operation string // Operation that failed (list, exists, ...)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("raster source error during %s for %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("raster source error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
