package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Dispatches          *prometheus.CounterVec
	APIErrors           prometheus.Counter
	RequestSeconds      *prometheus.HistogramVec
	ThrottleWaitSeconds prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Dispatches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "citymapper_dispatches_total",
			Help: "Total number of dispatch attempts by outcome.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "citymapper_api_errors_total",
			Help: "Total number of transport and decode failures from the Citymapper API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citymapper_request_duration_seconds",
			Help:    "Duration of requests to the Citymapper API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ThrottleWaitSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "citymapper_throttle_wait_seconds",
			Help:    "Time spent waiting on the outbound rate limiter.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
