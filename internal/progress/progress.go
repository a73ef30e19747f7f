// Package progress provides lazily-initialized progress reporting for
// long-running workflows.
package progress

import (
	"log/slog"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/ports/output"
)

// Progressor kinds.
const (
	KindDefault = "default"
	KindStep    = "step"
)

// Progressor tracks the state of a progress display and pushes changes
// to a sink. The sink is only initialized once a label or position is
// actually set, so an unused progressor costs nothing.
type Progressor struct {
	sink        output.ProgressSink
	kind        string
	label       string
	min         int
	max         int
	step        int
	position    int
	initialized bool
}

// New creates a default-kind progressor over the given range.
func New(sink output.ProgressSink, label string, min, max, step int) *Progressor {
	return &Progressor{
		sink:  sink,
		kind:  KindDefault,
		label: label,
		min:   min,
		max:   max,
		step:  step,
	}
}

// Initialize pushes the current configuration to the sink. Repeated
// calls are no-ops.
func (p *Progressor) Initialize() {
	if p.initialized {
		return
	}
	p.sink.Setup(p.kind, p.label, p.min, p.max, p.step)
	p.initialized = true
}

// SetDefaultKind switches the display back to an indeterminate bar.
func (p *Progressor) SetDefaultKind() {
	p.kind = KindDefault
	if p.initialized {
		p.sink.Setup(p.kind, p.label, p.min, p.max, p.step)
	}
}

// SetRange switches to a stepped bar over [min, max] with the given
// step interval.
func (p *Progressor) SetRange(min, max, step int) {
	p.kind = KindStep
	p.min = min
	p.max = max
	p.step = step
	if p.initialized {
		p.sink.Setup(p.kind, p.label, p.min, p.max, p.step)
	}
}

// SetLabel updates the label, initializing the display on first use.
// Unchanged labels are not re-sent.
func (p *Progressor) SetLabel(label string) {
	if p.label == label {
		return
	}
	p.label = label
	if !p.initialized {
		p.Initialize()
		return
	}
	p.sink.SetLabel(label)
}

// SetPosition moves the progress position, initializing the display on
// first use. Unchanged positions are not re-sent.
func (p *Progressor) SetPosition(position int) {
	if p.position == position {
		return
	}
	p.position = position
	if !p.initialized {
		p.Initialize()
	}
	p.sink.SetPosition(position)
}

// Position returns the current position.
func (p *Progressor) Position() int {
	return p.position
}

// Reset clears the display if it was ever initialized.
func (p *Progressor) Reset() {
	if p.initialized {
		p.sink.Reset()
	}
}

// Close resets the display; it satisfies io.Closer so a progressor can
// be released with defer.
func (p *Progressor) Close() error {
	p.Reset()
	return nil
}

// LogSink is a ProgressSink that writes progress updates to a logger.
type LogSink struct {
	logger *slog.Logger
	label  string
	max    int
}

// NewLogSink creates a logging progress sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Setup implements output.ProgressSink.
func (s *LogSink) Setup(kind, label string, _, max, _ int) {
	s.label = label
	s.max = max
	s.logger.Info("progress started", "kind", kind, "label", label, "max", max)
}

// SetLabel implements output.ProgressSink.
func (s *LogSink) SetLabel(label string) {
	s.label = label
}

// SetPosition implements output.ProgressSink.
func (s *LogSink) SetPosition(position int) {
	s.logger.Debug("progress", "label", s.label, "position", position, "max", s.max)
}

// Reset implements output.ProgressSink.
func (s *LogSink) Reset() {
	s.logger.Info("progress finished", "label", s.label)
}

// QuietSink drops all progress updates. Used when config disables
// progress output.
type QuietSink struct{}

// Setup implements output.ProgressSink.
func (QuietSink) Setup(_, _ string, _, _, _ int) {}

// SetLabel implements output.ProgressSink.
func (QuietSink) SetLabel(_ string) {}

// SetPosition implements output.ProgressSink.
func (QuietSink) SetPosition(_ int) {}

// Reset implements output.ProgressSink.
func (QuietSink) Reset() {}
