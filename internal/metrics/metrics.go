// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "f1kb"

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "searches_total",
		Help:      "Total number of searches by intent",
	}, []string{"intent"})
	SmartAnswersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "smart_answers_total",
		Help:      "Total number of champion answers returned",
	})
	StandingsComputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "standings_computations_total",
		Help:      "Total number of standings computations by kind",
	}, []string{"kind"})
	ImportRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "import_records_total",
		Help:      "Total number of imported records by entity",
	}, []string{"entity"})
	ImportErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "import_errors_total",
		Help:      "Total number of import errors by entity",
	}, []string{"entity"})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests by route and status",
	}, []string{"route", "status"})
)

// Gauge metrics
var (
	LastImportTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_import_timestamp_seconds",
		Help:      "Unix time of the last successful import",
	})
)

// Histogram metrics
var (
	SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of search requests in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	StandingsDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "standings_duration_seconds",
		Help:      "Duration of standings computations in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
	ImportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "import_duration_seconds",
		Help:      "Duration of import runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SearchesTotal)
		registry.MustRegister(SmartAnswersTotal)
		registry.MustRegister(StandingsComputationsTotal)
		registry.MustRegister(ImportRecordsTotal)
		registry.MustRegister(ImportErrorsTotal)
		registry.MustRegister(APIRequestsTotal)

		registry.MustRegister(LastImportTimestamp)

		registry.MustRegister(SearchDuration)
		registry.MustRegister(StandingsDuration)
		registry.MustRegister(ImportDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSearch records a search and its duration.
func RecordSearch(intent string, durationSeconds float64) {
	SearchesTotal.WithLabelValues(intent).Inc()
	SearchDuration.Observe(durationSeconds)
}

// RecordSmartAnswer records a returned champion answer.
func RecordSmartAnswer() {
	SmartAnswersTotal.Inc()
}

// RecordStandings records a standings computation.
func RecordStandings(kind string, durationSeconds float64) {
	StandingsComputationsTotal.WithLabelValues(kind).Inc()
	StandingsDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordImportRecords adds imported records for an entity.
func RecordImportRecords(entity string, count int) {
	ImportRecordsTotal.WithLabelValues(entity).Add(float64(count))
}

// RecordImportError records a failed import record or request.
func RecordImportError(entity string) {
	ImportErrorsTotal.WithLabelValues(entity).Inc()
}

// RecordImportCompleted records the duration and time of a finished import.
func RecordImportCompleted(durationSeconds float64, unixTime float64) {
	ImportDuration.Observe(durationSeconds)
	LastImportTimestamp.Set(unixTime)
}

// RecordAPIRequest records an API response.
func RecordAPIRequest(route, status string) {
	APIRequestsTotal.WithLabelValues(route, status).Inc()
}
