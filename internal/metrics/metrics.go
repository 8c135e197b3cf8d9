package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LocationsProcessed *prometheus.CounterVec
	APIErrors          prometheus.Counter
	RequestSeconds     *prometheus.HistogramVec
	TokensUsed         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LocationsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roadscan_locations_processed_total",
			Help: "Total number of processed coordinates.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "roadscan_provider_api_errors_total",
			Help: "Total number of errors received from external APIs.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadscan_request_duration_seconds",
			Help:    "Duration of requests to external APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		TokensUsed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "roadscan_tokens_total",
			Help: "Total number of inference tokens consumed.",
		}, []string{"direction"}),
	}
}
