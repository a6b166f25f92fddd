package dashboard

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK          = "ok"
	outcomeSample      = "sample"
	outcomeFailed      = "failed"
	outcomeConfigError = "config_error"
)

var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdash",
			Subsystem: "dashboard",
			Name:      "cycles_total",
			Help:      "Completed load cycles by outcome",
		},
		[]string{"outcome"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reportdash",
			Subsystem: "dashboard",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of load cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal, cycleDuration)
}
