package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// ErrRateLimited is returned when the sync API rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// SyncResult contains the result of a synchronize pass.
type SyncResult struct {
	MosaicsSynced   int       `json:"mosaics_synced"`
	MosaicsFailed   int       `json:"mosaics_failed"`
	MosaicsTotal    int       `json:"mosaics_total"`
	SyncedAt        time.Time `json:"synced_at"`
	NextScheduledAt time.Time `json:"next_scheduled_at,omitempty"`
}

// SyncService periodically synchronizes managed mosaics with their
// raster sources.
type SyncService struct {
	catalog   output.MosaicCatalog
	registry  *MosaicRegistry
	metrics   output.MetricsCollector
	workspace string
	interval  time.Duration
	logger    *slog.Logger

	// Lifecycle management
	stopCh chan struct{}
	wg     sync.WaitGroup

	// Rate limiting for API triggers
	lastAPISync time.Time
	apiMutex    sync.Mutex

	// Prevents concurrent sync passes
	syncOpMutex sync.Mutex

	// Track next scheduled sync for reporting
	nextSync time.Time
	syncMu   sync.RWMutex
}

// NewSyncService creates a new sync service. workspace is the container
// whose dataset count is reported after each pass.
func NewSyncService(catalog output.MosaicCatalog, registry *MosaicRegistry, metrics output.MetricsCollector, workspace string, interval time.Duration, logger *slog.Logger) *SyncService {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &SyncService{
		catalog:   catalog,
		registry:  registry,
		metrics:   metrics,
		workspace: workspace,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
		// Initialize to past time to allow immediate first API call
		lastAPISync: time.Now().Add(-31 * time.Second),
	}
}

// Start begins the periodic sync scheduler.
func (s *SyncService) Start(ctx context.Context) {
	s.logger.Info("starting sync service", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// run is the main sync loop.
func (s *SyncService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setNextSync(time.Now().Add(s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped: context canceled")
			return
		case <-s.stopCh:
			s.logger.Info("sync service stopped")
			return
		case <-ticker.C:
			s.logger.Debug("scheduled sync triggered")
			s.doSync(ctx)
			s.setNextSync(time.Now().Add(s.interval))
		}
	}
}

// Stop gracefully stops the sync service.
func (s *SyncService) Stop() {
	s.logger.Info("stopping sync service")
	close(s.stopCh)
	s.wg.Wait()
}

// TriggerSync manually triggers a synchronize pass with rate limiting.
// Returns ErrRateLimited if called more than 2 times per minute.
func (s *SyncService) TriggerSync(ctx context.Context) (SyncResult, error) {
	s.apiMutex.Lock()
	defer s.apiMutex.Unlock()

	// Rate limit: 30 seconds cooldown (allows ~2 requests per minute)
	if time.Since(s.lastAPISync) < 30*time.Second {
		return SyncResult{}, ErrRateLimited
	}
	s.lastAPISync = time.Now()

	return s.doSyncWithResult(ctx)
}

// doSync performs the synchronize pass without returning results.
func (s *SyncService) doSync(ctx context.Context) {
	result, err := s.doSyncWithResult(ctx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
		return
	}
	s.logger.Info("sync completed",
		"synced", result.MosaicsSynced,
		"failed", result.MosaicsFailed,
		"total", result.MosaicsTotal,
	)
}

// doSyncWithResult synchronizes every ready managed mosaic against its
// sources.
func (s *SyncService) doSyncWithResult(ctx context.Context) (SyncResult, error) {
	s.syncOpMutex.Lock()
	defer s.syncOpMutex.Unlock()

	mosaics, err := s.registry.ListMosaics(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{
		MosaicsTotal: len(mosaics),
		SyncedAt:     time.Now(),
	}
	for _, m := range mosaics {
		if m.Status == domain.StatusBuilding || m.Status == domain.StatusPending {
			s.logger.Debug("skipping mosaic not yet built", "name", m.Name, "status", m.Status)
			continue
		}

		s.registry.SetStatus(m.Name, domain.StatusSyncing)
		if err := s.catalog.SynchronizeMosaic(ctx, m.Path, output.SynchronizeOptions{
			UpdateWithNewItems: true,
			SyncOnlyStale:      true,
			UpdateCellSizes:    true,
			UpdateBoundary:     true,
		}); err != nil {
			s.logger.Error("mosaic sync failed", "name", m.Name, "error", err)
			s.registry.SetFailed(m.Name, err)
			result.MosaicsFailed++
			continue
		}
		s.registry.RecordSync(m.Name)
		result.MosaicsSynced++
	}

	// The pass just walked the workspace, so refresh its dataset gauge.
	if infos, err := s.catalog.List(ctx, s.workspace); err == nil {
		s.metrics.SetWorkspaceDatasets(s.workspace, len(infos))
	} else {
		s.logger.Warn("failed to count workspace datasets", "workspace", s.workspace, "error", err)
	}

	result.NextScheduledAt = s.getNextSync()
	return result, nil
}

// setNextSync updates the next scheduled sync time.
func (s *SyncService) setNextSync(t time.Time) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.nextSync = t
}

// getNextSync returns the next scheduled sync time.
func (s *SyncService) getNextSync() time.Time {
	s.syncMu.RLock()
	defer s.syncMu.RUnlock()
	return s.nextSync
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}
