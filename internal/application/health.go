package application

import (
	"context"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/input"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry *MosaicRegistry
	catalog  output.Workspace
	scratch  string
}

// NewHealthService creates a new health service. The catalog and
// scratch container back the readiness probe.
func NewHealthService(registry *MosaicRegistry, catalog output.Workspace, scratch string) *HealthService {
	return &HealthService{
		registry: registry,
		catalog:  catalog,
		scratch:  scratch,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(ctx context.Context) bool {
	return true // Basic health check
}

// IsReady returns true if the service is ready to accept requests.
func (s *HealthService) IsReady(ctx context.Context) bool {
	if _, err := s.catalog.List(ctx, s.scratch); err != nil {
		return false
	}

	mosaics, err := s.registry.ListMosaics(ctx)
	if err != nil {
		return false
	}

	// Ready if at least one mosaic is ready
	for _, m := range mosaics {
		if m.IsReady() {
			return true
		}
	}

	// Also ready if no mosaics are managed yet (empty state)
	return len(mosaics) == 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	mosaics, _ := s.registry.ListMosaics(ctx)

	managed := len(mosaics)
	ready := 0
	for _, m := range mosaics {
		if m.IsReady() {
			ready++
		}
	}

	components := map[string]string{
		"catalog": "ok",
	}
	if _, err := s.catalog.List(ctx, s.scratch); err != nil {
		components["catalog"] = err.Error()
	}

	return input.HealthDetails{
		Healthy:        s.IsHealthy(ctx),
		Ready:          s.IsReady(ctx),
		MosaicsManaged: managed,
		MosaicsReady:   ready,
		Components:     components,
	}
}

// MosaicHealth contains health info for a single managed mosaic.
type MosaicHealth struct {
	Name   string
	Status domain.MosaicStatus
	Ready  bool
}

// GetMosaicHealth returns health info for all managed mosaics.
func (s *HealthService) GetMosaicHealth(ctx context.Context) []MosaicHealth {
	mosaics, _ := s.registry.ListMosaics(ctx)

	health := make([]MosaicHealth, len(mosaics))
	for i, m := range mosaics {
		status, _ := s.registry.GetMosaicStatus(ctx, m.Name)
		health[i] = MosaicHealth{
			Name:   m.Name,
			Status: status,
			Ready:  m.IsReady(),
		}
	}

	return health
}
