package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// ClientAggregations counts client directory builds by operation (list, get)
	// and outcome (ok, not_found, upstream_error).
	ClientAggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_aggregations_total",
			Help: "Client directory aggregation runs",
		},
		[]string{"operation", "outcome"},
	)

	// ClientCacheLookups counts directory cache lookups by result (hit, miss, error).
	ClientCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_cache_lookups_total",
			Help: "Client directory cache lookups",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ClientAggregations)
		prometheus.MustRegister(ClientCacheLookups)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
