package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncOperation increments the counter for a catalog operation.
	IncOperation(operation string, success bool)

	// ObserveOperationDuration records a catalog operation duration.
	ObserveOperationDuration(operation string, duration time.Duration)

	// IncTempDatasets tracks open temporary datasets (+1 on create,
	// -1 on release).
	IncTempDatasets(delta int)

	// IncOverviewRetry counts robust overview build retries.
	IncOverviewRetry(mosaic string)

	// SetWorkspaceDatasets sets the dataset count of a container.
	SetWorkspaceDatasets(container string, count int)

	// SetMosaicsManaged sets the managed/ready mosaic gauge pair.
	SetMosaicsManaged(total, ready int)

	// IncSourceOperations increments the raster source operation counter.
	IncSourceOperations(operation string, success bool)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncOperation implements MetricsCollector.
func (n *NoOpMetrics) IncOperation(_ string, _ bool) {}

// ObserveOperationDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveOperationDuration(_ string, _ time.Duration) {}

// IncTempDatasets implements MetricsCollector.
func (n *NoOpMetrics) IncTempDatasets(_ int) {}

// IncOverviewRetry implements MetricsCollector.
func (n *NoOpMetrics) IncOverviewRetry(_ string) {}

// SetWorkspaceDatasets implements MetricsCollector.
func (n *NoOpMetrics) SetWorkspaceDatasets(_ string, _ int) {}

// SetMosaicsManaged implements MetricsCollector.
func (n *NoOpMetrics) SetMosaicsManaged(_, _ int) {}

// IncSourceOperations implements MetricsCollector.
func (n *NoOpMetrics) IncSourceOperations(_ string, _ bool) {}
