package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of HTTP handlers, labeled by route path.
	RequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "futurebridge_request_latency_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// Total requests served, labeled by route path and status class.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "futurebridge_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "status"})
)

func Init() {
	prometheus.MustRegister(
		RequestLatency,
		RequestsTotal,
	)
}
