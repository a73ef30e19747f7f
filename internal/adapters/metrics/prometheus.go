// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	operationCounter    *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	tempDatasets        prometheus.Gauge
	overviewRetries     *prometheus.CounterVec
	workspaceDatasets   *prometheus.GaugeVec
	mosaicsManaged      prometheus.Gauge
	mosaicsReady        prometheus.Gauge
	sourceOperations    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "mosaicctl"
	}

	return &Collector{
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of catalog operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Catalog operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		tempDatasets: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "temp_datasets_open",
				Help:      "Number of open temporary datasets",
			},
		),

		overviewRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "overview_retries_total",
				Help:      "Total number of overview build retries",
			},
			[]string{"mosaic"},
		),

		workspaceDatasets: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "workspace_datasets",
				Help:      "Number of datasets in a workspace container",
			},
			[]string{"container"},
		),

		mosaicsManaged: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mosaics_managed",
				Help:      "Number of registered mosaic datasets",
			},
		),

		mosaicsReady: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mosaics_ready",
				Help:      "Number of mosaic datasets in ready state",
			},
		),

		sourceOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_operations_total",
				Help:      "Total number of raster source operations",
			},
			[]string{"operation", "status"},
		),

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// IncOperation increments the catalog operation counter.
func (c *Collector) IncOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.operationCounter.WithLabelValues(operation, status).Inc()
}

// ObserveOperationDuration records a catalog operation duration.
func (c *Collector) ObserveOperationDuration(operation string, duration time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncTempDatasets adjusts the open temporary dataset gauge.
func (c *Collector) IncTempDatasets(delta int) {
	c.tempDatasets.Add(float64(delta))
}

// IncOverviewRetry counts a robust overview build retry.
func (c *Collector) IncOverviewRetry(mosaic string) {
	c.overviewRetries.WithLabelValues(mosaic).Inc()
}

// SetWorkspaceDatasets sets the dataset count of a container.
func (c *Collector) SetWorkspaceDatasets(container string, count int) {
	c.workspaceDatasets.WithLabelValues(container).Set(float64(count))
}

// SetMosaicsManaged sets the managed/ready mosaic gauge pair.
func (c *Collector) SetMosaicsManaged(total, ready int) {
	c.mosaicsManaged.Set(float64(total))
	c.mosaicsReady.Set(float64(ready))
}

// IncSourceOperations increments the raster source operation counter.
func (c *Collector) IncSourceOperations(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.sourceOperations.WithLabelValues(operation, status).Inc()
}

// IncHTTPRequests increments the HTTP request counter.
func (c *Collector) IncHTTPRequests(method, path, status string) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration.
func (c *Collector) ObserveHTTPDuration(method, path string, duration time.Duration) {
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns HTTP middleware for metrics collection.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		path := normalizePath(r.URL.Path)
		status := statusToString(wrapped.statusCode)

		c.IncHTTPRequests(r.Method, path, status)
		c.ObserveHTTPDuration(r.Method, path, duration)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// normalizePath caps the URL path length to keep metric cardinality low.
func normalizePath(path string) string {
	switch {
	case len(path) > 30:
		return path[:30] + "..."
	default:
		return path
	}
}

// statusToString converts HTTP status code to string category.
func statusToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
