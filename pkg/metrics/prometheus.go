// Package metrics provides Prometheus metrics for the movies service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Catalogue
	moviesTotal        prometheus.Gauge
	moviesCreated      prometheus.Counter
	moviesUpdated      prometheus.Counter
	moviesDeleted      prometheus.Counter
	validationFailures *prometheus.CounterVec
	lookupMisses       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	corsRejected        prometheus.Counter

	// Errors
	errorsByType     *prometheus.CounterVec
	errorsByEndpoint *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry exposed on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "movies",
		subsystem:        "api",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collector definitions
	auto := promauto.With(m.registry)

	m.moviesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "catalogue_size",
		Help:        "Number of movies currently held in the catalogue",
		ConstLabels: m.constLabels,
	})

	m.moviesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "movies_created_total",
		Help:        "Total number of movies created",
		ConstLabels: m.constLabels,
	})

	m.moviesUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "movies_updated_total",
		Help:        "Total number of movies partially updated",
		ConstLabels: m.constLabels,
	})

	m.moviesDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "movies_deleted_total",
		Help:        "Total number of movies deleted",
		ConstLabels: m.constLabels,
	})

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "validation_failures_total",
			Help:        "Rejected request bodies by operation",
			ConstLabels: m.constLabels,
		},
		[]string{"operation"},
	)

	m.lookupMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "lookup_misses_total",
			Help:        "Operations addressed to an unknown movie id",
			ConstLabels: m.constLabels,
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by route, method and status",
			ConstLabels: m.constLabels,
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"route", "method", "status_code"},
	)

	m.corsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cors_rejected_origins_total",
		Help:        "Requests whose Origin header was not in the allow-list",
		ConstLabels: m.constLabels,
	})

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of errors by type and severity",
			ConstLabels: m.constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_route_total",
			Help:        "Total number of errors by route",
			ConstLabels: m.constLabels,
		},
		[]string{"route", "method", "error_type"},
	)
}

// UpdateCatalogueSize sets the catalogue gauge.
func (m *Manager) UpdateCatalogueSize(n int) { m.moviesTotal.Set(float64(n)) }

// RecordMovieCreated increments the created counter.
func (m *Manager) RecordMovieCreated() { m.moviesCreated.Inc() }

// RecordMovieUpdated increments the updated counter.
func (m *Manager) RecordMovieUpdated() { m.moviesUpdated.Inc() }

// RecordMovieDeleted increments the deleted counter.
func (m *Manager) RecordMovieDeleted() { m.moviesDeleted.Inc() }

// RecordValidationFailure counts a rejected body for operation.
func (m *Manager) RecordValidationFailure(operation string) {
	m.validationFailures.WithLabelValues(operation).Inc()
}

// RecordLookupMiss counts an operation on an unknown id.
func (m *Manager) RecordLookupMiss(operation string) {
	m.lookupMisses.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}

// RecordCORSRejected counts a request from an origin outside the allow-list.
func (m *Manager) RecordCORSRejected() { m.corsRejected.Inc() }

// RecordError counts an error response.
func (m *Manager) RecordError(route, method, errorType, severity string) {
	m.errorsByType.WithLabelValues(errorType, severity).Inc()
	m.errorsByEndpoint.WithLabelValues(route, method, errorType).Inc()
}

// Package-level helpers backed by the global manager.

// UpdateCatalogueSize sets the catalogue gauge.
func UpdateCatalogueSize(n int) { globalManager.UpdateCatalogueSize(n) }

// RecordMovieCreated increments the created counter.
func RecordMovieCreated() { globalManager.RecordMovieCreated() }

// RecordMovieUpdated increments the updated counter.
func RecordMovieUpdated() { globalManager.RecordMovieUpdated() }

// RecordMovieDeleted increments the deleted counter.
func RecordMovieDeleted() { globalManager.RecordMovieDeleted() }

// RecordValidationFailure counts a rejected body for operation.
func RecordValidationFailure(operation string) { globalManager.RecordValidationFailure(operation) }

// RecordLookupMiss counts an operation on an unknown id.
func RecordLookupMiss(operation string) { globalManager.RecordLookupMiss(operation) }

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(route, method, statusCode, durationMs)
}

// RecordCORSRejected counts a request from an origin outside the allow-list.
func RecordCORSRejected() { globalManager.RecordCORSRejected() }

// RecordError counts an error response.
func RecordError(route, method, errorType, severity string) {
	globalManager.RecordError(route, method, errorType, severity)
}

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
