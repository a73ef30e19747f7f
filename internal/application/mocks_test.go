package application

import (
	"context"
	"sync"
	"time"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// mockCatalog implements output.MosaicCatalog for testing. Every
// dataset exists unless listed in missing; operations succeed unless an
// error is injected.
type mockCatalog struct {
	missing   map[string]bool
	syncErr   error
	listInfos []domain.DatasetInfo

	currentUnbuilt int
	unbuiltPlan    []int

	addedInputs [][]string
	addedTypes  []string
	synced      []string
	created     []string
	calcs       []string
}

func (m *mockCatalog) Exists(_ context.Context, path string) (bool, error) {
	return !m.missing[path], nil
}

func (m *mockCatalog) Delete(_ context.Context, path string) error {
	if m.missing == nil {
		m.missing = map[string]bool{}
	}
	m.missing[path] = true
	return nil
}

func (m *mockCatalog) UniqueName(_ context.Context, name, _ string) (string, error) {
	return name, nil
}

func (m *mockCatalog) Describe(_ context.Context, path string) (*domain.DatasetInfo, error) {
	return &domain.DatasetInfo{Path: path, Kind: domain.KindMosaic}, nil
}

func (m *mockCatalog) List(_ context.Context, _ string) ([]domain.DatasetInfo, error) {
	return m.listInfos, nil
}

func (m *mockCatalog) CreateTable(_ context.Context, _, _ string, _ output.TableOptions) error {
	return nil
}

func (m *mockCatalog) RowCount(_ context.Context, _ string) (int, error) { return 0, nil }

func (m *mockCatalog) ListFields(_ context.Context, _ string) ([]domain.Field, error) {
	return nil, nil
}

func (m *mockCatalog) AddField(_ context.Context, _ string, _ domain.Field) error { return nil }

func (m *mockCatalog) DeleteField(_ context.Context, _ string, _ ...string) error { return nil }

func (m *mockCatalog) AddIndex(_ context.Context, _ string, _ []string, _ output.IndexOptions) error {
	return nil
}

func (m *mockCatalog) CalculateField(_ context.Context, _, field, expression, _ string) error {
	m.calcs = append(m.calcs, field+"="+expression)
	return nil
}

func (m *mockCatalog) SelectByAttribute(_ context.Context, _, selectionType, where string) (int, error) {
	if selectionType == domain.NewSelection && where == domain.WhereUnbuiltOverviews {
		return m.currentUnbuilt, nil
	}
	if selectionType == domain.NewSelection && where == domain.WherePrimaryRasters {
		if len(m.addedInputs) > 0 {
			return len(m.addedInputs[len(m.addedInputs)-1]), nil
		}
		return 0, nil
	}
	return 0, nil
}

func (m *mockCatalog) JoinField(_ context.Context, _, _, _, _ string, _ []string) error { return nil }

func (m *mockCatalog) Sort(_ context.Context, _, _ string, _ []domain.SortField) error { return nil }

func (m *mockCatalog) DeleteIdentical(_ context.Context, _ string, _ []string) error { return nil }

func (m *mockCatalog) CopyRows(_ context.Context, _, _ string) error { return nil }

func (m *mockCatalog) SearchRows(_ context.Context, _ string, _ []string, _ string) (output.RowCursor, error) {
	return &emptyCursor{}, nil
}

func (m *mockCatalog) UpdateRows(_ context.Context, _ string, _ []string, _ string) (output.UpdateCursor, error) {
	return &emptyCursor{}, nil
}

func (m *mockCatalog) InsertRows(_ context.Context, _ string, _ []string, _ [][]any) error {
	return nil
}

func (m *mockCatalog) CreateFeatureClass(_ context.Context, _, _ string, _ output.FeatureClassOptions) error {
	return nil
}

func (m *mockCatalog) Buffer(_ context.Context, _, _, _ string, _ output.BufferOptions) error {
	return nil
}

func (m *mockCatalog) Clip(_ context.Context, _, _, _ string) error { return nil }

func (m *mockCatalog) Erase(_ context.Context, _, _, _ string) error { return nil }

func (m *mockCatalog) Project(_ context.Context, _, _ string, _ output.ProjectOptions) error {
	return nil
}

func (m *mockCatalog) SimplifyPolygons(_ context.Context, _, _, _ string) error { return nil }

func (m *mockCatalog) CopyFeatures(_ context.Context, _, _ string) error { return nil }

func (m *mockCatalog) SelectByLocation(_ context.Context, _ string, _ output.LocationQuery) (int, error) {
	return 0, nil
}

func (m *mockCatalog) MakeFeatureLayer(_ context.Context, _, _, _ string) error { return nil }

func (m *mockCatalog) CopyRaster(_ context.Context, _, _ string, _ output.RasterCopyOptions) error {
	return nil
}

func (m *mockCatalog) CalculateStatistics(_ context.Context, _ string, _ output.StatisticsOptions) error {
	return nil
}

func (m *mockCatalog) CreateMosaicDataset(_ context.Context, container, name, _ string) error {
	m.created = append(m.created, container+"/"+name)
	return nil
}

func (m *mockCatalog) CreateReferencedMosaic(_ context.Context, _, _ string) error { return nil }

func (m *mockCatalog) MakeMosaicLayer(_ context.Context, _, _ string) error { return nil }

func (m *mockCatalog) AddRastersToMosaic(_ context.Context, _, rasterType string, inputs []string, _ output.AddRastersOptions) error {
	m.addedTypes = append(m.addedTypes, rasterType)
	m.addedInputs = append(m.addedInputs, inputs)
	return nil
}

func (m *mockCatalog) RemoveRastersFromMosaic(_ context.Context, _, _ string) error { return nil }

func (m *mockCatalog) BuildFootprints(_ context.Context, _ string) error { return nil }

func (m *mockCatalog) BuildBoundary(_ context.Context, _ string) error { return nil }

func (m *mockCatalog) BuildMultidimensionalInfo(_ context.Context, _ string, _ []string) error {
	return nil
}

func (m *mockCatalog) DefineOverviews(_ context.Context, _ string, _ int, _ string) error {
	return nil
}

func (m *mockCatalog) BuildOverviews(_ context.Context, _ string, _ output.OverviewOptions) error {
	if len(m.unbuiltPlan) > 0 {
		m.currentUnbuilt = m.unbuiltPlan[0]
		m.unbuiltPlan = m.unbuiltPlan[1:]
	}
	return nil
}

func (m *mockCatalog) CalculateCellSizeRanges(_ context.Context, _ string) error { return nil }

func (m *mockCatalog) ExportMosaicGeometry(_ context.Context, _, _, _ string) error { return nil }

func (m *mockCatalog) ImportMosaicGeometry(_ context.Context, _, _, _, _, _ string) error {
	return nil
}

func (m *mockCatalog) ExportMosaicPaths(_ context.Context, _, _ string, _ output.ExportPathsQuery) error {
	return nil
}

func (m *mockCatalog) RepairMosaicPaths(_ context.Context, _ string, _ []domain.PathRemap) error {
	return nil
}

func (m *mockCatalog) SetMosaicProperties(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func (m *mockCatalog) SetRasterProperties(_ context.Context, _ string, _ map[string]any) error {
	return nil
}

func (m *mockCatalog) GetRasterProperty(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (m *mockCatalog) SynchronizeMosaic(_ context.Context, mosaic string, _ output.SynchronizeOptions) error {
	m.synced = append(m.synced, mosaic)
	return m.syncErr
}

// emptyCursor is a cursor over no rows.
type emptyCursor struct{}

func (c *emptyCursor) Next() bool            { return false }
func (c *emptyCursor) Scan(_ ...any) error   { return nil }
func (c *emptyCursor) Err() error            { return nil }
func (c *emptyCursor) Close() error          { return nil }
func (c *emptyCursor) Update(_ ...any) error { return nil }
func (c *emptyCursor) DeleteRow() error      { return nil }

// mockSource implements output.RasterSource for testing.
type mockSource struct {
	objects []output.RasterObject
	listErr error
	root    string
}

func (m *mockSource) List(_ context.Context) ([]output.RasterObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockSource) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (m *mockSource) Locator(key string) string {
	return m.root + "/" + key
}

// mockMetrics implements output.MetricsCollector and records calls.
type mockMetrics struct {
	mu         sync.Mutex
	operations map[string]int
	retries    int
	managed    int
	ready      int
	workspaces map[string]int
}

func (m *mockMetrics) IncOperation(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.operations == nil {
		m.operations = map[string]int{}
	}
	key := operation
	if !success {
		key += ":failed"
	}
	m.operations[key]++
}

func (m *mockMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) IncTempDatasets(_ int) {}

func (m *mockMetrics) IncOverviewRetry(_ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func (m *mockMetrics) SetWorkspaceDatasets(container string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.workspaces == nil {
		m.workspaces = map[string]int{}
	}
	m.workspaces[container] = count
}

func (m *mockMetrics) SetMosaicsManaged(total, ready int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.managed = total
	m.ready = ready
}

func (m *mockMetrics) IncSourceOperations(_ string, _ bool) {}

// mockSink implements output.ProgressSink and records labels.
type mockSink struct {
	labels    []string
	positions []int
	resets    int
}

func (s *mockSink) Setup(_, label string, _, _, _ int) {
	s.labels = append(s.labels, label)
}

func (s *mockSink) SetLabel(label string) {
	s.labels = append(s.labels, label)
}

func (s *mockSink) SetPosition(position int) {
	s.positions = append(s.positions, position)
}

func (s *mockSink) Reset() {
	s.resets++
}
