package watcher

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// scratchCatalog is a minimal Workspace for janitor tests.
type scratchCatalog struct {
	datasets map[string]bool
	deleted  []string
}

func (c *scratchCatalog) Exists(_ context.Context, path string) (bool, error) {
	return c.datasets[path], nil
}

func (c *scratchCatalog) Delete(_ context.Context, path string) error {
	delete(c.datasets, path)
	c.deleted = append(c.deleted, path)
	return nil
}

func (c *scratchCatalog) UniqueName(_ context.Context, name, _ string) (string, error) {
	return name, nil
}

func (c *scratchCatalog) Describe(_ context.Context, path string) (*domain.DatasetInfo, error) {
	return &domain.DatasetInfo{Path: path, Kind: domain.KindTable}, nil
}

func (c *scratchCatalog) List(_ context.Context, _ string) ([]domain.DatasetInfo, error) {
	infos := make([]domain.DatasetInfo, 0, len(c.datasets))
	for path := range c.datasets {
		infos = append(infos, domain.DatasetInfo{Path: path, Kind: domain.KindTable})
	}
	return infos, nil
}

// janitorMetrics counts sweep operations and temp gauge movements.
type janitorMetrics struct {
	output.NoOpMetrics
	sweeps int
	temps  int
}

func (m *janitorMetrics) IncOperation(operation string, success bool) {
	if operation == "scratch_sweep" && success {
		m.sweeps++
	}
}

func (m *janitorMetrics) IncTempDatasets(delta int) {
	m.temps += delta
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJanitor(t *testing.T, cfg Config, catalog *scratchCatalog, metrics *janitorMetrics) *Janitor {
	t.Helper()
	j, err := New(cfg, catalog, metrics, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = j.Stop() })
	return j
}

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		ds     string
		want   bool
	}{
		{"salted match", "w1", "w1TempTable", true},
		{"salted miss", "w1", "TempTable", false},
		{"default base name", "", "TempTable", true},
		{"default uniquified", "", "TempMosaic_3", true},
		{"default reference", "", "TempReference", true},
		{"persistent dataset", "", "Ortho", false},
		{"lookalike", "", "TempTables", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Janitor{config: Config{Prefix: tt.prefix}}
			if got := j.isTemporary(tt.ds); got != tt.want {
				t.Errorf("isTemporary(%q) = %v, want %v", tt.ds, got, tt.want)
			}
		})
	}
}

func TestSweepRespectsTTL(t *testing.T) {
	catalog := &scratchCatalog{datasets: map[string]bool{
		"/scratch.db/TempTable_0": true,
		"/scratch.db/Ortho":       true,
	}}
	metrics := &janitorMetrics{}
	j := newTestJanitor(t, Config{Scratch: "/scratch.db", TTL: time.Hour}, catalog, metrics)

	now := time.Now()

	// First scan only registers the temporary.
	swept, err := j.sweep(context.Background(), now, time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 0 {
		t.Errorf("swept = %d, want 0 before TTL", swept)
	}

	// Past the TTL the leaked temporary goes; the persistent dataset stays.
	swept, err = j.sweep(context.Background(), now.Add(2*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1 after TTL", swept)
	}
	if len(catalog.deleted) != 1 || catalog.deleted[0] != "/scratch.db/TempTable_0" {
		t.Errorf("deleted = %v, want only the temporary", catalog.deleted)
	}
	if !catalog.datasets["/scratch.db/Ortho"] {
		t.Error("persistent dataset should survive the sweep")
	}
	if metrics.sweeps != 1 {
		t.Errorf("sweep operations = %d, want 1", metrics.sweeps)
	}
	if metrics.temps != 0 {
		t.Errorf("temp gauge delta = %d, want 0; the sweeper owns no handles", metrics.temps)
	}
}

func TestSweepForgetsCleanedDatasets(t *testing.T) {
	catalog := &scratchCatalog{datasets: map[string]bool{
		"/scratch.db/TempTable": true,
	}}
	j := newTestJanitor(t, Config{Scratch: "/scratch.db", TTL: time.Hour}, catalog, &janitorMetrics{})

	now := time.Now()
	if _, err := j.sweep(context.Background(), now, time.Hour); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(j.firstSeen) != 1 {
		t.Fatalf("firstSeen = %d entries, want 1", len(j.firstSeen))
	}

	// The owner cleaned up in the meantime.
	delete(catalog.datasets, "/scratch.db/TempTable")

	if _, err := j.sweep(context.Background(), now.Add(time.Minute), time.Hour); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(j.firstSeen) != 0 {
		t.Errorf("firstSeen = %d entries, want 0 after owner cleanup", len(j.firstSeen))
	}
}

func TestSweepAllIgnoresAge(t *testing.T) {
	catalog := &scratchCatalog{datasets: map[string]bool{
		"/scratch.db/TempTable":   true,
		"/scratch.db/TempMosaic":  true,
		"/scratch.db/Inventories": true,
	}}
	metrics := &janitorMetrics{}
	j := newTestJanitor(t, Config{Scratch: "/scratch.db", TTL: time.Hour}, catalog, metrics)

	swept, err := j.SweepAll(context.Background())
	if err != nil {
		t.Fatalf("SweepAll: %v", err)
	}
	if swept != 2 {
		t.Errorf("swept = %d, want 2", swept)
	}
	if !catalog.datasets["/scratch.db/Inventories"] {
		t.Error("non-temporary dataset should survive SweepAll")
	}
	if metrics.sweeps != 2 {
		t.Errorf("sweep operations = %d, want 2", metrics.sweeps)
	}
}

func TestConsumeDirtyDebounce(t *testing.T) {
	j := &Janitor{config: Config{Debounce: time.Hour}}

	if j.consumeDirty() {
		t.Error("clean janitor should not be due")
	}

	j.mu.Lock()
	j.dirty = true
	j.lastEvent = time.Now()
	j.mu.Unlock()

	if j.consumeDirty() {
		t.Error("event inside the quiet period should not trigger a sweep")
	}

	j.mu.Lock()
	j.lastEvent = time.Now().Add(-2 * time.Hour)
	j.mu.Unlock()

	if !j.consumeDirty() {
		t.Error("dirty flag past the quiet period should trigger a sweep")
	}
	if j.consumeDirty() {
		t.Error("dirty flag should be consumed")
	}
}
