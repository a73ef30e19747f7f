package application

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

const sampleWorkflow = `
name: ortho
mosaic: /ws/mosaics.gdb/Ortho
coordinate_system: ""
sources:
  - primary
raster_type: Raster Dataset
fields:
  - name: AcquiredAt
    type: date
  - name: SensorName
    type: text
    length: 64
calculations:
  - field: MinPS
    expression: "0"
    where: Category = 1
properties:
  rows_maximum_imagesize: 15000
min_ps: 0
max_ps: 50
overviews:
  levels: 3
  resampling: BILINEAR
  max_retries: 3
footprint:
  rebuild: true
  build_boundary: true
`

func TestLoadWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ortho.yaml")
	if err := os.WriteFile(path, []byte(sampleWorkflow), 0o644); err != nil {
		t.Fatal(err)
	}

	wf, err := LoadWorkflow(path)
	if err != nil {
		t.Fatalf("LoadWorkflow() error = %v", err)
	}
	if wf.Name != "ortho" || wf.Mosaic != "/ws/mosaics.gdb/Ortho" {
		t.Errorf("identity = (%q, %q)", wf.Name, wf.Mosaic)
	}
	if len(wf.Sources) != 1 || wf.Sources[0] != "primary" {
		t.Errorf("sources = %v", wf.Sources)
	}
	if len(wf.Fields) != 2 || wf.Fields[1].Length != 64 {
		t.Errorf("fields = %+v", wf.Fields)
	}
	if wf.Overviews.MaxRetries != 3 || wf.Overviews.Resampling != "BILINEAR" {
		t.Errorf("overviews = %+v", wf.Overviews)
	}
	if !wf.Footprint.Rebuild || !wf.Footprint.BuildBoundary {
		t.Errorf("footprint = %+v", wf.Footprint)
	}
	if wf.MaxPS != 50 {
		t.Errorf("max_ps = %v", wf.MaxPS)
	}
}

func TestLoadWorkflowMissingFile(t *testing.T) {
	if _, err := LoadWorkflow(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadWorkflow() expected error for missing file")
	}
}

func TestWorkflowValidate(t *testing.T) {
	tests := []struct {
		name    string
		wf      Workflow
		wantErr bool
	}{
		{
			name: "valid",
			wf:   Workflow{Name: "a", Mosaic: "/ws/m.gdb/A"},
		},
		{
			name:    "missing name",
			wf:      Workflow{Mosaic: "/ws/m.gdb/A"},
			wantErr: true,
		},
		{
			name:    "missing mosaic",
			wf:      Workflow{Name: "a"},
			wantErr: true,
		},
		{
			name:    "negative retries",
			wf:      Workflow{Name: "a", Mosaic: "/ws/m.gdb/A", Overviews: OverviewSpec{MaxRetries: -1}},
			wantErr: true,
		},
		{
			name:    "cache without container",
			wf:      Workflow{Name: "a", Mosaic: "/ws/m.gdb/A", Overviews: OverviewSpec{Cache: CacheSpec{Enabled: true}}},
			wantErr: true,
		},
		{
			name:    "calculation without field",
			wf:      Workflow{Name: "a", Mosaic: "/ws/m.gdb/A", Calculations: []CalcSpec{{Expression: "1"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cfgErr *domain.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Validate() error = %v, want *domain.ConfigError", err)
				}
			}
		})
	}
}

func TestFieldSpecTypes(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.FieldType
		wantErr bool
	}{
		{in: "", want: domain.FieldText},
		{in: "text", want: domain.FieldText},
		{in: "short", want: domain.FieldShort},
		{in: "long", want: domain.FieldLong},
		{in: "float", want: domain.FieldFloat},
		{in: "double", want: domain.FieldDouble},
		{in: "date", want: domain.FieldDate},
		{in: "blob", want: domain.FieldBlob},
		{in: "guid", want: domain.FieldGUID},
		{in: "decimal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("type "+tt.in, func(t *testing.T) {
			field, err := FieldSpec{Name: "f", Type: tt.in}.Field()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Field() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && field.Type != tt.want {
				t.Errorf("Field().Type = %q, want %q", field.Type, tt.want)
			}
		})
	}
}
