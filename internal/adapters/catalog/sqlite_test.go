package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

func newTestCatalog(t *testing.T) (*SQLiteCatalog, string) {
	t.Helper()
	c := NewSQLiteCatalog()
	t.Cleanup(func() { _ = c.Close() })
	return c, filepath.Join(t.TempDir(), "workspace.db")
}

func seedTable(t *testing.T, c *SQLiteCatalog, container, name string) string {
	t.Helper()
	ctx := context.Background()

	err := c.CreateTable(ctx, container, name, output.TableOptions{
		Fields: []domain.Field{
			{Name: "Name", Type: domain.FieldText, Nullable: true},
			{Name: "Category", Type: domain.FieldLong, Nullable: true},
			{Name: "LowPS", Type: domain.FieldDouble, Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	path := filepath.Join(container, name)
	rows := [][]any{
		{"a", 1, 0.5},
		{"b", 1, 2.0},
		{"ov", 2, 8.0},
	}
	if err := c.InsertRows(ctx, path, []string{"Name", "Category", "LowPS"}, rows); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	return path
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		container string
		table     string
		wantErr   bool
	}{
		{"absolute", "/data/ws.db/AMD_Ortho_CAT", "/data/ws.db", "AMD_Ortho_CAT", false},
		{"relative", "ws.db/items", "ws.db", "items", false},
		{"no container", "items", "", "", true},
		{"trailing separator", "/data/ws.db/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, table, err := split(tt.path)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidName) {
					t.Fatalf("split(%q) err = %v, want ErrInvalidName", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("split(%q): %v", tt.path, err)
			}
			if container != tt.container || table != tt.table {
				t.Errorf("split(%q) = (%q, %q), want (%q, %q)",
					tt.path, container, table, tt.container, tt.table)
			}
		})
	}
}

func TestExistsAndDelete(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	exists, err := c.Exists(ctx, path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatal("seeded table should exist")
	}

	if err := c.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = c.Exists(ctx, path)
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if exists {
		t.Error("table should be gone after delete")
	}

	// A second delete of the missing table is still a success.
	if err := c.Delete(ctx, path); err != nil {
		t.Errorf("repeated Delete: %v", err)
	}
}

func TestUniqueNameProbesSuffixes(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	seedTable(t, c, container, "Temp")

	got, err := c.UniqueName(ctx, "Temp", container)
	if err != nil {
		t.Fatalf("UniqueName: %v", err)
	}
	if got != "Temp_0" {
		t.Errorf("UniqueName = %q, want Temp_0", got)
	}

	got, err = c.UniqueName(ctx, "Fresh", container)
	if err != nil {
		t.Fatalf("UniqueName: %v", err)
	}
	if got != "Fresh" {
		t.Errorf("UniqueName = %q, want Fresh", got)
	}
}

func TestDescribeReportsFieldsAndRows(t *testing.T) {
	c, container := newTestCatalog(t)
	path := seedTable(t, c, container, "items")

	info, err := c.Describe(context.Background(), path)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if info.Kind != domain.KindTable {
		t.Errorf("Kind = %s, want %s", info.Kind, domain.KindTable)
	}
	if info.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3", info.RowCount)
	}
	if len(info.Fields) != 3 {
		t.Fatalf("Fields = %d, want 3", len(info.Fields))
	}
	if info.Fields[1].Name != "Category" || info.Fields[1].Type != domain.FieldLong {
		t.Errorf("field 1 = %+v, want Category LONG", info.Fields[1])
	}
}

func TestDescribeMissingTable(t *testing.T) {
	c, container := newTestCatalog(t)
	seedTable(t, c, container, "items")

	_, err := c.Describe(context.Background(), filepath.Join(container, "nope"))
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Errorf("err = %v, want ErrDatasetNotFound", err)
	}
}

func TestListEnumeratesTables(t *testing.T) {
	c, container := newTestCatalog(t)
	seedTable(t, c, container, "b_items")
	seedTable(t, c, container, "a_items")

	infos, err := c.List(context.Background(), container)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List returned %d tables, want 2", len(infos))
	}
	if infos[0].Path != filepath.Join(container, "a_items") {
		t.Errorf("first table = %s, want a_items first", infos[0].Path)
	}
}

func TestCreateTableFromTemplate(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	src := seedTable(t, c, container, "items")

	if err := c.CreateTable(ctx, container, "clone", output.TableOptions{Template: src}); err != nil {
		t.Fatalf("CreateTable from template: %v", err)
	}

	fields, err := c.ListFields(ctx, filepath.Join(container, "clone"))
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) != 3 {
		t.Errorf("clone has %d fields, want 3", len(fields))
	}
	count, err := c.RowCount(ctx, filepath.Join(container, "clone"))
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != 0 {
		t.Errorf("template clone has %d rows, want 0", count)
	}
}

func TestCreateTableForeignTemplateUnsupported(t *testing.T) {
	c, container := newTestCatalog(t)
	seedTable(t, c, container, "items")

	err := c.CreateTable(context.Background(), container, "clone", output.TableOptions{
		Template: "/elsewhere.db/items",
	})
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestAddAndDeleteField(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	if err := c.AddField(ctx, path, domain.Field{Name: "MaxPS", Type: domain.FieldDouble, Nullable: true}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	fields, err := c.ListFields(ctx, path)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) != 4 {
		t.Fatalf("fields = %d, want 4", len(fields))
	}

	if err := c.DeleteField(ctx, path, "MaxPS", "LowPS"); err != nil {
		t.Fatalf("DeleteField: %v", err)
	}
	fields, err = c.ListFields(ctx, path)
	if err != nil {
		t.Fatalf("ListFields: %v", err)
	}
	if len(fields) != 2 {
		t.Errorf("fields = %d, want 2", len(fields))
	}
}

func TestCalculateFieldAppliesWhere(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	if err := c.CalculateField(ctx, path, "LowPS", "10.0", "Category = 2"); err != nil {
		t.Fatalf("CalculateField: %v", err)
	}

	count, err := c.SelectByAttribute(ctx, path, domain.NewSelection, "LowPS = 10.0")
	if err != nil {
		t.Fatalf("SelectByAttribute: %v", err)
	}
	if count != 1 {
		t.Errorf("selected %d rows, want 1", count)
	}
}

func TestSelectByAttributeUnsupportedType(t *testing.T) {
	c, container := newTestCatalog(t)
	path := seedTable(t, c, container, "items")

	_, err := c.SelectByAttribute(context.Background(), path, domain.SwitchSelection, "")
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestJoinFieldCopiesValues(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	err := c.CreateTable(ctx, container, "lookup", output.TableOptions{
		Fields: []domain.Field{
			{Name: "Key", Type: domain.FieldText, Nullable: true},
			{Name: "Rank", Type: domain.FieldLong, Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	lookup := filepath.Join(container, "lookup")
	if err := c.InsertRows(ctx, lookup, []string{"Key", "Rank"}, [][]any{{"a", 7}, {"b", 9}}); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}

	if err := c.JoinField(ctx, path, "Name", lookup, "Key", []string{"Rank"}); err != nil {
		t.Fatalf("JoinField: %v", err)
	}

	count, err := c.SelectByAttribute(ctx, path, domain.NewSelection, "Rank = 9")
	if err != nil {
		t.Fatalf("SelectByAttribute: %v", err)
	}
	if count != 1 {
		t.Errorf("joined rows with Rank 9 = %d, want 1", count)
	}
}

func TestSortOrdersRows(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")
	dst := filepath.Join(container, "sorted")

	if err := c.Sort(ctx, path, dst, []domain.SortField{{Name: "LowPS", Descending: true}}); err != nil {
		t.Fatalf("Sort: %v", err)
	}

	cursor, err := c.SearchRows(ctx, dst, []string{"LowPS"}, "")
	if err != nil {
		t.Fatalf("SearchRows: %v", err)
	}
	defer func() { _ = cursor.Close() }()

	var got []float64
	for cursor.Next() {
		var v float64
		if err := cursor.Scan(&v); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		got = append(got, v)
	}
	if err := cursor.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	want := []float64{8.0, 2.0, 0.5}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDeleteIdenticalKeepsFirst(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	if err := c.InsertRows(ctx, path, []string{"Name", "Category", "LowPS"}, [][]any{{"a", 1, 0.5}}); err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if err := c.DeleteIdentical(ctx, path, []string{"Name", "Category"}); err != nil {
		t.Fatalf("DeleteIdentical: %v", err)
	}

	count, err := c.RowCount(ctx, path)
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != 3 {
		t.Errorf("rows = %d, want 3 after deduplication", count)
	}
}

func TestCopyRows(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")
	dst := filepath.Join(container, "copy")

	if err := c.CopyRows(ctx, path, dst); err != nil {
		t.Fatalf("CopyRows: %v", err)
	}
	count, err := c.RowCount(ctx, dst)
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != 3 {
		t.Errorf("copied rows = %d, want 3", count)
	}
}

func TestUpdateRowsRewritesAndDeletes(t *testing.T) {
	c, container := newTestCatalog(t)
	ctx := context.Background()
	path := seedTable(t, c, container, "items")

	cursor, err := c.UpdateRows(ctx, path, []string{"Name", "Category"}, "Category = 1")
	if err != nil {
		t.Fatalf("UpdateRows: %v", err)
	}
	defer func() { _ = cursor.Close() }()

	for cursor.Next() {
		var name string
		var category int
		if err := cursor.Scan(&name, &category); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if name == "a" {
			if err := cursor.Update("a", 3); err != nil {
				t.Fatalf("Update: %v", err)
			}
		} else {
			if err := cursor.DeleteRow(); err != nil {
				t.Fatalf("DeleteRow: %v", err)
			}
		}
	}
	if err := cursor.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}

	count, err := c.RowCount(ctx, path)
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
	promoted, err := c.SelectByAttribute(ctx, path, domain.NewSelection, "Category = 3")
	if err != nil {
		t.Fatalf("SelectByAttribute: %v", err)
	}
	if promoted != 1 {
		t.Errorf("promoted rows = %d, want 1", promoted)
	}
}

func TestAddIndex(t *testing.T) {
	c, container := newTestCatalog(t)
	path := seedTable(t, c, container, "items")

	err := c.AddIndex(context.Background(), path, []string{"Name"}, output.IndexOptions{
		Name:      "idx_items_name",
		Unique:    true,
		Ascending: true,
	})
	if err != nil {
		t.Fatalf("AddIndex: %v", err)
	}
}

func TestGeoprocessingUnsupported(t *testing.T) {
	c, container := newTestCatalog(t)
	path := seedTable(t, c, container, "items")

	if err := c.BuildFootprints(context.Background(), path); !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("BuildFootprints err = %v, want ErrUnsupported", err)
	}
	var catErr *domain.CatalogError
	err := c.Buffer(context.Background(), path, path+"_buf", "100 Meters", output.BufferOptions{})
	if !errors.As(err, &catErr) {
		t.Errorf("Buffer err = %v, want CatalogError", err)
	}
}
