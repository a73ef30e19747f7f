package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// MosaicRegistry tracks the mosaics under workflow management.
type MosaicRegistry struct {
	mu      sync.RWMutex
	mosaics map[string]*mosaicEntry
	metrics output.MetricsCollector
	logger  *slog.Logger
}

type mosaicEntry struct {
	Mosaic   domain.ManagedMosaic
	Workflow *Workflow
}

// NewMosaicRegistry creates a new mosaic registry.
func NewMosaicRegistry(metrics output.MetricsCollector, logger *slog.Logger) *MosaicRegistry {
	return &MosaicRegistry{
		mosaics: make(map[string]*mosaicEntry),
		metrics: metrics,
		logger:  logger,
	}
}

// Register places a workflow's mosaic under management. Re-registering
// a name replaces its workflow but keeps the recorded history.
func (r *MosaicRegistry) Register(wf *Workflow) {
	r.mu.Lock()
	if entry, ok := r.mosaics[wf.Name]; ok {
		entry.Workflow = wf
		entry.Mosaic.Path = wf.Mosaic
	} else {
		r.mosaics[wf.Name] = &mosaicEntry{
			Mosaic: domain.ManagedMosaic{
				Name:   wf.Name,
				Path:   wf.Mosaic,
				Status: domain.StatusPending,
			},
			Workflow: wf,
		}
	}
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("registered mosaic", "name", wf.Name, "path", wf.Mosaic)
}

// Unregister removes a mosaic from management. The catalog dataset is
// untouched.
func (r *MosaicRegistry) Unregister(name string) {
	r.mu.Lock()
	delete(r.mosaics, name)
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("unregistered mosaic", "name", name)
}

// ListMosaics returns all managed mosaics.
func (r *MosaicRegistry) ListMosaics(_ context.Context) ([]domain.ManagedMosaic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mosaics := make([]domain.ManagedMosaic, 0, len(r.mosaics))
	for _, entry := range r.mosaics {
		mosaics = append(mosaics, entry.Mosaic)
	}
	return mosaics, nil
}

// GetMosaic returns a managed mosaic by name.
func (r *MosaicRegistry) GetMosaic(_ context.Context, name string) (*domain.ManagedMosaic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.mosaics[name]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	m := entry.Mosaic
	return &m, nil
}

// GetMosaicStatus returns the lifecycle state of a managed mosaic.
func (r *MosaicRegistry) GetMosaicStatus(_ context.Context, name string) (domain.MosaicStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.mosaics[name]
	if !ok {
		return "", domain.ErrDatasetNotFound
	}
	return entry.Mosaic.Status, nil
}

// Workflow returns the workflow registered under name.
func (r *MosaicRegistry) Workflow(name string) (*Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.mosaics[name]
	if !ok {
		return nil, false
	}
	return entry.Workflow, true
}

// Names returns the names of all managed mosaics.
func (r *MosaicRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.mosaics))
	for name := range r.mosaics {
		names = append(names, name)
	}
	return names
}

// Count returns the number of managed mosaics.
func (r *MosaicRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mosaics)
}

// SetStatus transitions a mosaic's lifecycle state.
func (r *MosaicRegistry) SetStatus(name string, status domain.MosaicStatus) {
	r.mu.Lock()
	if entry, ok := r.mosaics[name]; ok {
		entry.Mosaic.Status = status
		if status != domain.StatusFailed {
			entry.Mosaic.LastError = ""
		}
	}
	r.mu.Unlock()

	r.updateMetrics()
}

// BeginBuild atomically transitions a mosaic into the building state.
// It reports false when the mosaic is unknown or a build is already in
// flight, so concurrent triggers race for a single slot.
func (r *MosaicRegistry) BeginBuild(name string) bool {
	r.mu.Lock()
	entry, ok := r.mosaics[name]
	if !ok || entry.Mosaic.Status == domain.StatusBuilding {
		r.mu.Unlock()
		return false
	}
	entry.Mosaic.Status = domain.StatusBuilding
	entry.Mosaic.LastError = ""
	r.mu.Unlock()

	r.updateMetrics()
	return true
}

// SetFailed marks a mosaic failed and records the error.
func (r *MosaicRegistry) SetFailed(name string, err error) {
	r.mu.Lock()
	if entry, ok := r.mosaics[name]; ok {
		entry.Mosaic.Status = domain.StatusFailed
		entry.Mosaic.LastError = err.Error()
	}
	r.mu.Unlock()

	r.updateMetrics()
}

// RecordBuild marks a successful build with its item count.
func (r *MosaicRegistry) RecordBuild(name string, items int) {
	r.mu.Lock()
	if entry, ok := r.mosaics[name]; ok {
		entry.Mosaic.Status = domain.StatusReady
		entry.Mosaic.Items = items
		entry.Mosaic.LastBuild = time.Now()
		entry.Mosaic.BuildCount++
		entry.Mosaic.LastError = ""
	}
	r.mu.Unlock()

	r.updateMetrics()
}

// RecordSync marks a successful synchronize pass.
func (r *MosaicRegistry) RecordSync(name string) {
	r.mu.Lock()
	if entry, ok := r.mosaics[name]; ok {
		entry.Mosaic.LastSync = time.Now()
		if entry.Mosaic.Status == domain.StatusSyncing {
			entry.Mosaic.Status = domain.StatusReady
		}
	}
	r.mu.Unlock()

	r.updateMetrics()
}

// updateMetrics refreshes the managed/ready mosaic gauges.
func (r *MosaicRegistry) updateMetrics() {
	r.mu.RLock()
	total := len(r.mosaics)
	ready := 0
	for _, entry := range r.mosaics {
		if entry.Mosaic.IsReady() {
			ready++
		}
	}
	r.mu.RUnlock()

	r.metrics.SetMosaicsManaged(total, ready)
}
