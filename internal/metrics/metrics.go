package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects run statistics for a geocode check.
type Metrics struct {
	RowsProcessed    *prometheus.CounterVec
	APIErrors        prometheus.Counter
	RequestSeconds   *prometheus.HistogramVec
	ProviderStatuses *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// NewMetrics registers the geocheck collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocheck_rows_processed_total",
			Help: "Total number of input rows evaluated, by outcome and reason.",
		}, []string{"outcome", "reason"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocheck_provider_api_errors_total",
			Help: "Total number of failed requests to the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocheck_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderStatuses: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocheck_provider_responses_total",
			Help: "Total number of provider responses, by status.",
		}, []string{"status"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocheck_cache_lookups_total",
			Help: "Total number of geocode cache lookups, by result.",
		}, []string{"result"}),
	}
}

// WriteTextfile writes every metric gathered by g to path in the text exposition
// format, for collection by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
