// Package application contains the application services.
package application

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

// Workflow describes how a mosaic dataset is built and maintained. It
// is loaded from a YAML definition file.
type Workflow struct {
	Name             string `yaml:"name"`
	Mosaic           string `yaml:"mosaic"`
	CoordinateSystem string `yaml:"coordinate_system"`

	// Sources names the configured raster sources feeding the mosaic.
	Sources    []string `yaml:"sources"`
	RasterType string   `yaml:"raster_type"`

	Fields       []FieldSpec `yaml:"fields"`
	Calculations []CalcSpec  `yaml:"calculations"`

	Properties map[string]any `yaml:"properties"`

	MinPS float64 `yaml:"min_ps"`
	MaxPS float64 `yaml:"max_ps"`

	Boundary  BoundarySpec  `yaml:"boundary"`
	Overviews OverviewSpec  `yaml:"overviews"`
	Footprint FootprintSpec `yaml:"footprint"`
}

// FieldSpec declares a footprint field to create.
type FieldSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Alias  string `yaml:"alias"`
	Length int    `yaml:"length"`
}

// CalcSpec assigns an expression to a footprint field.
type CalcSpec struct {
	Field      string `yaml:"field"`
	Expression string `yaml:"expression"`
	Where      string `yaml:"where"`
}

// BoundarySpec points at the feature class limiting the mosaic extent.
// Items entirely outside the buffered boundary are removed.
type BoundarySpec struct {
	Path   string `yaml:"path"`
	Buffer string `yaml:"buffer"`
}

// OverviewSpec is the overview build policy.
type OverviewSpec struct {
	Levels     int       `yaml:"levels"`
	Resampling string    `yaml:"resampling"`
	MaxRetries int       `yaml:"max_retries"`
	Cache      CacheSpec `yaml:"cache"`
}

// CacheSpec enables building a single cached overview raster.
type CacheSpec struct {
	Enabled   bool    `yaml:"enabled"`
	Container string  `yaml:"container"`
	Factor    float64 `yaml:"factor"`
}

// FootprintSpec controls footprint and boundary recomputation.
type FootprintSpec struct {
	Rebuild       bool `yaml:"rebuild"`
	BuildBoundary bool `yaml:"build_boundary"`
}

// LoadWorkflow reads and validates a workflow definition file.
func LoadWorkflow(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow %s: %w", path, err)
	}
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing workflow %s: %w", path, err)
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return &wf, nil
}

// Validate checks the workflow for the fields the build service needs.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return &domain.ConfigError{Field: "name", Message: "workflow name is required"}
	}
	if w.Mosaic == "" {
		return &domain.ConfigError{Field: "mosaic", Message: "mosaic path is required"}
	}
	if w.Overviews.MaxRetries < 0 {
		return &domain.ConfigError{Field: "overviews.max_retries", Message: "must not be negative"}
	}
	if w.Overviews.Cache.Enabled && w.Overviews.Cache.Container == "" {
		return &domain.ConfigError{Field: "overviews.cache.container", Message: "required when the overview cache is enabled"}
	}
	for i, c := range w.Calculations {
		if c.Field == "" {
			return &domain.ConfigError{Field: fmt.Sprintf("calculations[%d].field", i), Message: "field is required"}
		}
	}
	return nil
}

// fieldType maps a workflow type string onto the domain field type.
func (f FieldSpec) fieldType() (domain.FieldType, error) {
	switch f.Type {
	case "text", "":
		return domain.FieldText, nil
	case "short":
		return domain.FieldShort, nil
	case "long":
		return domain.FieldLong, nil
	case "float":
		return domain.FieldFloat, nil
	case "double":
		return domain.FieldDouble, nil
	case "date":
		return domain.FieldDate, nil
	case "blob":
		return domain.FieldBlob, nil
	case "guid":
		return domain.FieldGUID, nil
	}
	return "", &domain.ConfigError{Field: "fields." + f.Name + ".type", Message: "unknown field type " + f.Type}
}

// Field converts the spec into a domain field.
func (f FieldSpec) Field() (domain.Field, error) {
	ft, err := f.fieldType()
	if err != nil {
		return domain.Field{}, err
	}
	return domain.Field{Name: f.Name, Type: ft, Alias: f.Alias, Length: f.Length}, nil
}
