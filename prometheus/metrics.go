package prometheus

import (
	"sync"
	"time"

	"whatsfresh/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Entry interface metrics
	EntryOperationsCounter *prometheus.CounterVec
	AssociationChanges     *prometheus.CounterVec
	GeocodeFailuresCounter prometheus.Counter
	LoginAttemptsCounter   *prometheus.CounterVec

	// Public API metrics
	APINotFoundCounter *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the service metrics with the default registry.
// Only the first call has an effect.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		register(config.Metrics.Prefix)
	})
}

func register(prefix string) {
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	EntryOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_entry_operations_total",
			Help: "Total number of data entry operations by entity and outcome",
		},
		[]string{"entity", "operation"},
	)

	AssociationChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_association_rows_total",
			Help: "Association rows created or deleted by reconciliation",
		},
		[]string{"association", "change"},
	)

	GeocodeFailuresCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_geocode_failures_total",
			Help: "Total number of vendor addresses that could not be geocoded",
		},
	)

	LoginAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of staff sign-in attempts by result",
		},
		[]string{"result"},
	)

	APINotFoundCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_api_not_found_total",
			Help: "Public API responses answered with a not-found envelope",
		},
		[]string{"entity"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordEntryOperation increments the counter for entry operations
func RecordEntryOperation(entity, operation string) {
	if EntryOperationsCounter == nil {
		return
	}
	EntryOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordAssociationChanges adds the rows written by one reconciliation
func RecordAssociationChanges(association string, created, deleted int) {
	if AssociationChanges == nil {
		return
	}
	AssociationChanges.WithLabelValues(association, "created").Add(float64(created))
	AssociationChanges.WithLabelValues(association, "deleted").Add(float64(deleted))
}

// RecordGeocodeFailure increments the geocoding failure counter
func RecordGeocodeFailure() {
	if GeocodeFailuresCounter == nil {
		return
	}
	GeocodeFailuresCounter.Inc()
}

// RecordLoginAttempt increments the sign-in counter for result
func RecordLoginAttempt(result string) {
	if LoginAttemptsCounter == nil {
		return
	}
	LoginAttemptsCounter.WithLabelValues(result).Inc()
}

// RecordAPINotFound increments the API not-found counter for entity
func RecordAPINotFound(entity string) {
	if APINotFoundCounter == nil {
		return
	}
	APINotFoundCounter.WithLabelValues(entity).Inc()
}
