package dataset

import (
	"context"
	"testing"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

func newTestTable(t *testing.T, cat *mockCatalog, path string) *Table {
	t.Helper()
	tbl, err := NewTable(context.Background(), cat, path, Options{}, testLogger())
	if err != nil {
		t.Fatalf("NewTable(%q) error = %v", path, err)
	}
	return tbl
}

func TestJoinFieldDefaultsJoinField(t *testing.T) {
	cat := &mockCatalog{}
	tbl := newTestTable(t, cat, "/ws/data.gdb/Parcels")
	join := newTestTable(t, cat, "/ws/data.gdb/Owners")

	if err := tbl.JoinField(context.Background(), "ParcelID", join, "", nil); err != nil {
		t.Fatalf("JoinField() error = %v", err)
	}
	if got := cat.countCalls("JoinField:ParcelID:/ws/data.gdb/Owners:ParcelID"); got != 1 {
		t.Errorf("JoinField calls = %d, want 1; calls: %v", got, cat.calls)
	}
}

func TestCreateAndCalculateField(t *testing.T) {
	cat := &mockCatalog{}
	tbl := newTestTable(t, cat, "/ws/data.gdb/Parcels")

	field := domain.Field{Name: "AreaKM", Type: domain.FieldDouble}
	if err := tbl.CreateAndCalculateField(context.Background(), field, "!Shape_Area! / 1000000"); err != nil {
		t.Fatalf("CreateAndCalculateField() error = %v", err)
	}

	var addAt, calcAt int
	for i, c := range cat.calls {
		switch c {
		case "AddField:AreaKM":
			addAt = i + 1
		case "CalculateField:AreaKM=!Shape_Area! / 1000000:":
			calcAt = i + 1
		}
	}
	if addAt == 0 || calcAt == 0 || addAt > calcAt {
		t.Errorf("expected AddField before CalculateField, calls: %v", cat.calls)
	}
}

func TestCalculateFieldsAppliesSharedWhere(t *testing.T) {
	cat := &mockCatalog{}
	tbl := newTestTable(t, cat, "/ws/data.gdb/Parcels")

	calcs := []FieldCalc{
		{Field: "MinPS", Expression: "0"},
		{Field: "MaxPS", Expression: "50"},
	}
	if err := tbl.CalculateFields(context.Background(), calcs, domain.WherePrimaryRasters); err != nil {
		t.Fatalf("CalculateFields() error = %v", err)
	}
	for _, want := range []string{
		"CalculateField:MinPS=0:" + domain.WherePrimaryRasters,
		"CalculateField:MaxPS=50:" + domain.WherePrimaryRasters,
	} {
		if got := cat.countCalls(want); got != 1 {
			t.Errorf("calls for %q = %d, want 1", want, got)
		}
	}
}

func TestFieldExists(t *testing.T) {
	cat := &mockCatalog{}
	tbl := newTestTable(t, cat, "/ws/data.gdb/Parcels")

	tests := []struct {
		name  string
		field string
		want  bool
	}{
		{name: "present", field: "OBJECTID", want: true},
		{name: "absent", field: "Category", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.FieldExists(context.Background(), tt.field)
			if err != nil {
				t.Fatalf("FieldExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FieldExists(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}
