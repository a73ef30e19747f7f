package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// fakeCursor implements output.RowCursor over canned rows.
type fakeCursor struct {
	rows [][]any
	i    int
}

func (c *fakeCursor) Next() bool {
	if c.i < len(c.rows) {
		c.i++
		return true
	}
	return false
}

func (c *fakeCursor) Scan(dest ...any) error {
	row := c.rows[c.i-1]
	for j, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[j].(string)
		case *float64:
			*p = row[j].(float64)
		case *int:
			*p = row[j].(int)
		}
	}
	return nil
}

func (c *fakeCursor) Err() error   { return nil }
func (c *fakeCursor) Close() error { return nil }

// fakeUpdateCursor records Update and DeleteRow calls.
type fakeUpdateCursor struct {
	fakeCursor
	updates [][]any
	deleted int
}

func (c *fakeUpdateCursor) Update(values ...any) error {
	c.updates = append(c.updates, values)
	return nil
}

func (c *fakeUpdateCursor) DeleteRow() error {
	c.deleted++
	return nil
}

// mockCatalog implements output.MosaicCatalog for testing. Datasets not
// present in the datasets map are treated as existing.
type mockCatalog struct {
	datasets    map[string]bool
	undeletable map[string]bool
	deleteErr   error

	// currentUnbuilt is what selecting unbuilt overviews reports;
	// unbuiltPlan is consumed one entry per overview build pass.
	currentUnbuilt int
	unbuiltPlan    []int
	builds         int

	switchCount   int
	locationCount int

	searchRows map[string][][]any
	updateRows [][]any
	lastUpdate *fakeUpdateCursor

	lastCopyDst  string
	lastCopyOpts output.RasterCopyOptions
	lastAddType  string
	lastAddIn    []string

	calls []string
}

func (m *mockCatalog) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockCatalog) countCalls(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *mockCatalog) Exists(_ context.Context, path string) (bool, error) {
	if v, ok := m.datasets[path]; ok {
		return v, nil
	}
	return true, nil
}

func (m *mockCatalog) Delete(_ context.Context, path string) error {
	m.record("Delete:" + path)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.undeletable[path] {
		return nil
	}
	if m.datasets == nil {
		m.datasets = map[string]bool{}
	}
	m.datasets[path] = false
	return nil
}

func (m *mockCatalog) UniqueName(_ context.Context, name, container string) (string, error) {
	if m.datasets[filepath.Join(container, name)] {
		return name + "_0", nil
	}
	return name, nil
}

func (m *mockCatalog) Describe(_ context.Context, path string) (*domain.DatasetInfo, error) {
	return &domain.DatasetInfo{Path: path, Kind: domain.KindTable}, nil
}

func (m *mockCatalog) List(_ context.Context, _ string) ([]domain.DatasetInfo, error) {
	return nil, nil
}

func (m *mockCatalog) CreateTable(_ context.Context, container, name string, _ output.TableOptions) error {
	m.record("CreateTable:" + filepath.Join(container, name))
	return nil
}

func (m *mockCatalog) RowCount(_ context.Context, _ string) (int, error) {
	return len(m.searchRows[""]), nil
}

func (m *mockCatalog) ListFields(_ context.Context, _ string) ([]domain.Field, error) {
	return []domain.Field{{Name: "OBJECTID", Type: domain.FieldLong}}, nil
}

func (m *mockCatalog) AddField(_ context.Context, _ string, field domain.Field) error {
	m.record("AddField:" + field.Name)
	return nil
}

func (m *mockCatalog) DeleteField(_ context.Context, _ string, fields ...string) error {
	m.record("DeleteField:" + strings.Join(fields, ","))
	return nil
}

func (m *mockCatalog) AddIndex(_ context.Context, _ string, fields []string, _ output.IndexOptions) error {
	m.record("AddIndex:" + strings.Join(fields, ","))
	return nil
}

func (m *mockCatalog) CalculateField(_ context.Context, _, field, expression, where string) error {
	m.record("CalculateField:" + field + "=" + expression + ":" + where)
	return nil
}

func (m *mockCatalog) SelectByAttribute(_ context.Context, _, selectionType, where string) (int, error) {
	m.record("SelectByAttribute:" + selectionType + ":" + where)
	switch {
	case selectionType == domain.NewSelection && where == domain.WhereUnbuiltOverviews:
		return m.currentUnbuilt, nil
	case selectionType == domain.SwitchSelection:
		return m.switchCount, nil
	}
	return 0, nil
}

func (m *mockCatalog) JoinField(_ context.Context, _, inField, joinPath, joinField string, _ []string) error {
	m.record("JoinField:" + inField + ":" + joinPath + ":" + joinField)
	return nil
}

func (m *mockCatalog) Sort(_ context.Context, _, _ string, _ []domain.SortField) error {
	m.record("Sort")
	return nil
}

func (m *mockCatalog) DeleteIdentical(_ context.Context, _ string, fields []string) error {
	m.record("DeleteIdentical:" + strings.Join(fields, ","))
	return nil
}

func (m *mockCatalog) CopyRows(_ context.Context, _, _ string) error {
	m.record("CopyRows")
	return nil
}

func (m *mockCatalog) SearchRows(_ context.Context, _ string, _ []string, where string) (output.RowCursor, error) {
	return &fakeCursor{rows: m.searchRows[where]}, nil
}

func (m *mockCatalog) UpdateRows(_ context.Context, _ string, _ []string, _ string) (output.UpdateCursor, error) {
	m.lastUpdate = &fakeUpdateCursor{fakeCursor: fakeCursor{rows: m.updateRows}}
	return m.lastUpdate, nil
}

func (m *mockCatalog) InsertRows(_ context.Context, _ string, _ []string, rows [][]any) error {
	m.record("InsertRows")
	return nil
}

func (m *mockCatalog) CreateFeatureClass(_ context.Context, container, name string, _ output.FeatureClassOptions) error {
	m.record("CreateFeatureClass:" + filepath.Join(container, name))
	return nil
}

func (m *mockCatalog) Buffer(_ context.Context, src, dst, distance string, _ output.BufferOptions) error {
	m.record("Buffer:" + src + ":" + distance)
	return nil
}

func (m *mockCatalog) Clip(_ context.Context, src, clip, dst string) error {
	m.record("Clip:" + src + ":" + clip)
	return nil
}

func (m *mockCatalog) Erase(_ context.Context, _, _, _ string) error {
	m.record("Erase")
	return nil
}

func (m *mockCatalog) Project(_ context.Context, _, _ string, _ output.ProjectOptions) error {
	m.record("Project")
	return nil
}

func (m *mockCatalog) SimplifyPolygons(_ context.Context, _, _, _ string) error {
	m.record("SimplifyPolygons")
	return nil
}

func (m *mockCatalog) CopyFeatures(_ context.Context, src, dst string) error {
	m.record("CopyFeatures:" + src + ">" + dst)
	return nil
}

func (m *mockCatalog) SelectByLocation(_ context.Context, _ string, q output.LocationQuery) (int, error) {
	m.record("SelectByLocation:" + q.Relationship + ":" + q.SelectPath)
	return m.locationCount, nil
}

func (m *mockCatalog) MakeFeatureLayer(_ context.Context, src, layer, where string) error {
	m.record("MakeFeatureLayer:" + src + ":" + layer + ":" + where)
	return nil
}

func (m *mockCatalog) CopyRaster(_ context.Context, _, dst string, opts output.RasterCopyOptions) error {
	m.record("CopyRaster:" + dst)
	m.lastCopyDst = dst
	m.lastCopyOpts = opts
	return nil
}

func (m *mockCatalog) CalculateStatistics(_ context.Context, path string, _ output.StatisticsOptions) error {
	m.record("CalculateStatistics:" + path)
	return nil
}

func (m *mockCatalog) CreateMosaicDataset(_ context.Context, container, name, _ string) error {
	m.record("CreateMosaicDataset:" + filepath.Join(container, name))
	return nil
}

func (m *mockCatalog) CreateReferencedMosaic(_ context.Context, src, dst string) error {
	m.record("CreateReferencedMosaic:" + src + ":" + dst)
	return nil
}

func (m *mockCatalog) MakeMosaicLayer(_ context.Context, mosaic, layer string) error {
	m.record("MakeMosaicLayer:" + mosaic + ":" + layer)
	return nil
}

func (m *mockCatalog) AddRastersToMosaic(_ context.Context, _, rasterType string, inputs []string, _ output.AddRastersOptions) error {
	m.record("AddRasters:" + rasterType)
	m.lastAddType = rasterType
	m.lastAddIn = inputs
	return nil
}

func (m *mockCatalog) RemoveRastersFromMosaic(_ context.Context, mosaic, where string) error {
	m.record("RemoveRasters:" + mosaic + ":" + where)
	return nil
}

func (m *mockCatalog) BuildFootprints(_ context.Context, _ string) error {
	m.record("BuildFootprints")
	return nil
}

func (m *mockCatalog) BuildBoundary(_ context.Context, _ string) error {
	m.record("BuildBoundary")
	return nil
}

func (m *mockCatalog) BuildMultidimensionalInfo(_ context.Context, _ string, _ []string) error {
	m.record("BuildMultidimensionalInfo")
	return nil
}

func (m *mockCatalog) DefineOverviews(_ context.Context, _ string, _ int, _ string) error {
	m.record("DefineOverviews")
	return nil
}

func (m *mockCatalog) BuildOverviews(_ context.Context, _ string, _ output.OverviewOptions) error {
	m.record("BuildOverviews")
	m.builds++
	if len(m.unbuiltPlan) > 0 {
		m.currentUnbuilt = m.unbuiltPlan[0]
		m.unbuiltPlan = m.unbuiltPlan[1:]
	}
	return nil
}

func (m *mockCatalog) CalculateCellSizeRanges(_ context.Context, _ string) error {
	m.record("CalculateCellSizeRanges")
	return nil
}

func (m *mockCatalog) ExportMosaicGeometry(_ context.Context, _, dst, geometryType string) error {
	m.record("ExportGeometry:" + geometryType + ":" + dst)
	return nil
}

func (m *mockCatalog) ImportMosaicGeometry(_ context.Context, _, geometryType, targetJoinField, src, srcJoinField string) error {
	m.record("ImportGeometry:" + geometryType + ":" + src)
	return nil
}

func (m *mockCatalog) ExportMosaicPaths(_ context.Context, _, dst string, q output.ExportPathsQuery) error {
	m.record("ExportPaths:" + q.Where + ":" + q.ExportMode + ":" + q.PathTypes)
	return nil
}

func (m *mockCatalog) RepairMosaicPaths(_ context.Context, _ string, _ []domain.PathRemap) error {
	m.record("RepairPaths")
	return nil
}

func (m *mockCatalog) SetMosaicProperties(_ context.Context, path string, _ map[string]any) error {
	m.record("SetMosaicProperties:" + path)
	return nil
}

func (m *mockCatalog) SetRasterProperties(_ context.Context, path string, _ map[string]any) error {
	m.record("SetRasterProperties:" + path)
	return nil
}

func (m *mockCatalog) GetRasterProperty(_ context.Context, _, property string) (string, error) {
	m.record("GetRasterProperty:" + property)
	return "", nil
}

func (m *mockCatalog) SynchronizeMosaic(_ context.Context, _ string, _ output.SynchronizeOptions) error {
	m.record("SynchronizeMosaic")
	return nil
}
