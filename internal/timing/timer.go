// Package timing provides wall-clock timing helpers for workflows.
package timing

import (
	"fmt"
	"log/slog"
	"time"
)

// FormatElapsed renders a duration as a human-readable report.
// Values truncate toward zero; each unit is singular exactly when it
// equals one.
//
//	42s          -> "42 seconds"
//	61s          -> "1 minute 1 second"
//	3725s        -> "1 hour 2 minutes 5 seconds"
func FormatElapsed(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}

	seconds := pluralize(total%60, "second")
	if total < 60 {
		return seconds
	}

	minutes := pluralize((total%3600)/60, "minute")
	if total < 3600 {
		return minutes + " " + seconds
	}

	hours := pluralize(total/3600, "hour")
	return hours + " " + minutes + " " + seconds
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Timer measures a labeled span of work and logs the elapsed time when
// stopped.
type Timer struct {
	label  string
	start  time.Time
	logger *slog.Logger
	now    func() time.Time
}

// Start begins timing a labeled span.
func Start(label string, logger *slog.Logger) *Timer {
	return newTimer(label, logger, time.Now)
}

func newTimer(label string, logger *slog.Logger, now func() time.Time) *Timer {
	return &Timer{label: label, start: now(), logger: logger, now: now}
}

// Stop ends the span, logs the elapsed report, and returns the elapsed
// duration.
func (t *Timer) Stop() time.Duration {
	elapsed := t.now().Sub(t.start)
	if t.logger != nil {
		t.logger.Info("finished", "label", t.label, "elapsed", FormatElapsed(elapsed))
	}
	return elapsed
}

// Track times a span until the returned function is called, for use
// with defer:
//
//	defer timing.Track("build overviews", logger)()
func Track(label string, logger *slog.Logger) func() time.Duration {
	t := Start(label, logger)
	return t.Stop
}
