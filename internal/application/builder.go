package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/dataset"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/progress"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/timing"
)

// BuildService executes mosaic build workflows against the catalog.
type BuildService struct {
	catalog  output.MosaicCatalog
	sources  map[string]output.RasterSource
	registry *MosaicRegistry
	metrics  output.MetricsCollector
	sink     output.ProgressSink
	scratch  string
	prefix   string
	logger   *slog.Logger
}

// NewBuildService creates a build service. The sources map binds the
// source names workflows refer to; scratch and prefix scope temporary
// datasets created during builds.
func NewBuildService(
	catalog output.MosaicCatalog,
	sources map[string]output.RasterSource,
	registry *MosaicRegistry,
	metrics output.MetricsCollector,
	sink output.ProgressSink,
	scratch, prefix string,
	logger *slog.Logger,
) *BuildService {
	return &BuildService{
		catalog:  catalog,
		sources:  sources,
		registry: registry,
		metrics:  metrics,
		sink:     sink,
		scratch:  scratch,
		prefix:   prefix,
		logger:   logger,
	}
}

// Build runs a workflow end to end: create the mosaic, load its
// sources, shape the footprint schema, apply properties, rebuild
// geometry and build overviews.
func (s *BuildService) Build(ctx context.Context, wf *Workflow) (err error) {
	s.registry.Register(wf)
	s.registry.SetStatus(wf.Name, domain.StatusBuilding)

	stop := timing.Track("workflow "+wf.Name, s.logger)
	defer func() {
		s.metrics.ObserveOperationDuration("build", stop())
		s.metrics.IncOperation("build", err == nil)
		if err != nil {
			s.registry.SetFailed(wf.Name, err)
		}
	}()

	prog := progress.New(s.sink, "building "+wf.Name, 0, s.buildSteps(wf), 1)
	defer prog.Close()

	md, err := dataset.NewMosaicDataset(ctx, s.catalog, wf.Mosaic, dataset.Options{
		Scratch: s.scratch,
		Prefix:  s.prefix,
		Metrics: s.metrics,
	}, s.logger)
	if err != nil {
		return err
	}
	defer md.Close()

	prog.SetLabel("creating mosaic dataset")
	if err = md.Create(ctx, wf.CoordinateSystem); err != nil {
		return err
	}
	prog.SetPosition(prog.Position() + 1)

	if err = s.loadSources(ctx, md, wf, prog); err != nil {
		return err
	}

	if err = s.shapeSchema(ctx, md, wf, prog); err != nil {
		return err
	}

	if len(wf.Properties) > 0 {
		if err = md.SetProperties(ctx, wf.Properties); err != nil {
			return err
		}
	}
	if wf.MinPS > 0 {
		if err = md.SetMinPS(ctx, wf.MinPS); err != nil {
			return err
		}
	}
	if wf.MaxPS > 0 {
		if err = md.SetMaxPS(ctx, wf.MaxPS); err != nil {
			return err
		}
	}

	if err = s.rebuildGeometry(ctx, md, wf, prog); err != nil {
		return err
	}

	if err = s.buildOverviews(ctx, md, wf, prog); err != nil {
		return err
	}

	items, err := s.itemCount(ctx, md)
	if err != nil {
		return err
	}
	s.registry.RecordBuild(wf.Name, items)
	s.logger.Info("workflow completed", "name", wf.Name, "mosaic", wf.Mosaic, "items", items)
	return nil
}

// buildSteps estimates the progress range of a workflow.
func (s *BuildService) buildSteps(wf *Workflow) int {
	steps := 2 + len(wf.Sources) // create, schema, sources
	if wf.Footprint.Rebuild || wf.Footprint.BuildBoundary || wf.Boundary.Path != "" {
		steps++
	}
	if wf.Overviews.Levels > 0 || wf.Overviews.MaxRetries > 0 || wf.Overviews.Cache.Enabled {
		steps++
	}
	return steps
}

// loadSources adds every configured source's rasters to the mosaic.
func (s *BuildService) loadSources(ctx context.Context, md *dataset.MosaicDataset, wf *Workflow, prog *progress.Progressor) error {
	rasterType := wf.RasterType
	if rasterType == "" {
		rasterType = output.RasterTypeDataset
	}

	for _, name := range wf.Sources {
		src, ok := s.sources[name]
		if !ok {
			return &domain.SourceError{Operation: "list", Key: name, Err: domain.ErrNotFound}
		}

		prog.SetLabel("loading source " + name)
		objects, err := src.List(ctx)
		s.metrics.IncSourceOperations("list", err == nil)
		if err != nil {
			return &domain.SourceError{Operation: "list", Key: name, Err: err}
		}
		if len(objects) == 0 {
			s.logger.Warn("source is empty", "source", name)
			prog.SetPosition(prog.Position() + 1)
			continue
		}

		locators := make([]string, len(objects))
		for i, obj := range objects {
			locators[i] = src.Locator(obj.Key)
		}
		if err := md.AddRasters(ctx, rasterType, locators, output.AddRastersOptions{
			UpdateCellSizeRanges: true,
			UpdateBoundary:       true,
			DuplicateItemsAction: "EXCLUDE_DUPLICATES",
			SubFolders:           true,
		}); err != nil {
			return err
		}
		prog.SetPosition(prog.Position() + 1)
	}
	return nil
}

// shapeSchema creates the workflow's footprint fields and runs its
// field calculations.
func (s *BuildService) shapeSchema(ctx context.Context, md *dataset.MosaicDataset, wf *Workflow, prog *progress.Progressor) error {
	if len(wf.Fields) == 0 && len(wf.Calculations) == 0 {
		return nil
	}
	prog.SetLabel("shaping footprint schema")

	ml, err := md.Layer(ctx)
	if err != nil {
		return err
	}
	for _, spec := range wf.Fields {
		field, err := spec.Field()
		if err != nil {
			return err
		}
		exists, err := ml.FieldExists(ctx, field.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := ml.AddField(ctx, field); err != nil {
			return err
		}
	}
	for _, calc := range wf.Calculations {
		if err := ml.CalculateField(ctx, calc.Field, calc.Expression, calc.Where); err != nil {
			return err
		}
	}
	prog.SetPosition(prog.Position() + 1)
	return nil
}

// rebuildGeometry recomputes footprints/boundary and trims items
// falling outside the workflow boundary.
func (s *BuildService) rebuildGeometry(ctx context.Context, md *dataset.MosaicDataset, wf *Workflow, prog *progress.Progressor) error {
	if !wf.Footprint.Rebuild && !wf.Footprint.BuildBoundary && wf.Boundary.Path == "" {
		return nil
	}
	prog.SetLabel("rebuilding geometry")

	if wf.Boundary.Path != "" {
		boundary, err := dataset.NewFeatureClass(ctx, s.catalog, wf.Boundary.Path, dataset.Options{}, s.logger)
		if err != nil {
			return err
		}
		if err := md.DeleteExternalRasters(ctx, boundary, wf.Boundary.Buffer); err != nil {
			return err
		}
	}
	if wf.Footprint.Rebuild {
		if err := md.BuildFootprints(ctx); err != nil {
			return err
		}
	}
	if wf.Footprint.BuildBoundary {
		if err := md.BuildBoundary(ctx); err != nil {
			return err
		}
	}
	prog.SetPosition(prog.Position() + 1)
	return nil
}

// buildOverviews applies the workflow overview policy.
func (s *BuildService) buildOverviews(ctx context.Context, md *dataset.MosaicDataset, wf *Workflow, prog *progress.Progressor) error {
	ov := wf.Overviews
	if ov.Levels == 0 && ov.MaxRetries == 0 && !ov.Cache.Enabled {
		return nil
	}
	prog.SetLabel("building overviews")

	if ov.Cache.Enabled {
		if err := md.BuildCacheOverview(ctx, ov.Cache.Container, ov.Cache.Factor); err != nil {
			return err
		}
		prog.SetPosition(prog.Position() + 1)
		return nil
	}

	if ov.Levels > 0 {
		if err := md.DefineOverviews(ctx, ov.Levels, ov.Resampling); err != nil {
			return err
		}
	}
	maxRetries := ov.MaxRetries
	if maxRetries == 0 {
		maxRetries = 1
	}
	attempts, err := md.BuildOverviewsRobust(ctx, maxRetries)
	for i := 1; i < attempts; i++ {
		s.metrics.IncOverviewRetry(wf.Mosaic)
	}
	if err != nil {
		return err
	}
	prog.SetPosition(prog.Position() + 1)
	return nil
}

// itemCount counts the mosaic's primary items.
func (s *BuildService) itemCount(ctx context.Context, md *dataset.MosaicDataset) (int, error) {
	ml, err := md.Layer(ctx)
	if err != nil {
		return 0, err
	}
	n, err := ml.SelectByAttribute(ctx, domain.NewSelection, domain.WherePrimaryRasters)
	if err != nil {
		return 0, err
	}
	if _, err := ml.SelectByAttribute(ctx, domain.ClearSelection, ""); err != nil {
		return 0, err
	}
	return n, nil
}

// BuildByName runs the workflow registered under name.
func (s *BuildService) BuildByName(ctx context.Context, name string) error {
	wf, ok := s.registry.Workflow(name)
	if !ok {
		return fmt.Errorf("workflow %s: %w", name, domain.ErrNotFound)
	}
	return s.Build(ctx, wf)
}
