package output

// ProgressSink receives progress updates from long-running workflows.
// The catalog UI, a log stream, or a test double can sit behind it.
type ProgressSink interface {
	// Setup establishes or reconfigures the progress display.
	Setup(kind, label string, min, max, step int)

	// SetLabel updates the display label.
	SetLabel(label string)

	// SetPosition moves the progress position.
	SetPosition(position int)

	// Reset clears the progress display.
	Reset()
}
