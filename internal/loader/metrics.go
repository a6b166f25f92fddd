package loader

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdash",
			Subsystem: "loader",
			Name:      "fetch_total",
			Help:      "Total resource retrievals by outcome",
		},
		[]string{"resource", "status"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reportdash",
			Subsystem: "loader",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of resource retrievals in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration)
}
