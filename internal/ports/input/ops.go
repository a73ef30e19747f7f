// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

// MosaicRegistry defines the primary port for managed mosaic lookup.
type MosaicRegistry interface {
	// ListMosaics returns all managed mosaics.
	ListMosaics(ctx context.Context) ([]domain.ManagedMosaic, error)

	// GetMosaic returns a managed mosaic by name.
	GetMosaic(ctx context.Context, name string) (*domain.ManagedMosaic, error)

	// GetMosaicStatus returns the lifecycle state of a managed mosaic.
	GetMosaicStatus(ctx context.Context, name string) (domain.MosaicStatus, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy        bool              // Overall health status
	Ready          bool              // Ready to accept requests
	MosaicsManaged int               // Number of managed mosaics
	MosaicsReady   int               // Number of ready mosaics
	Components     map[string]string // Component statuses
}
