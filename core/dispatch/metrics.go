package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	deliveriesTotal *prometheus.CounterVec
	deliveryLatency prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram) {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Number of per-recipient delivery attempts",
		},
		[]string{"status"},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_delivery_latency_seconds",
			Help:    "Latency of per-recipient notification sends",
			Buckets: prometheus.DefBuckets,
		},
	)
	return total, lat
}

func init() {
	deliveriesTotal, deliveryLatency = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(deliveriesTotal, deliveryLatency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	deliveriesTotal, deliveryLatency = newCollectors()
	if reg != nil {
		reg.MustRegister(deliveriesTotal, deliveryLatency)
	}
}
