package metrics

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/akostiuk/zoewatch/core/metrics"
)

// PromSink records watch cycles and deliveries in Prometheus metrics.
type PromSink struct {
	cycles     *prometheus.CounterVec
	cycleTime  prometheus.Histogram
	deliveries *prometheus.CounterVec
	latency    prometheus.Histogram
}

// NewPromSink registers watch metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watch_cycles_total",
		Help: "Total number of watch cycles by outcome and stage",
	}, []string{"outcome", "stage"})
	cycleTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "watch_cycle_duration_seconds",
		Help:    "Duration of one watch cycle",
		Buckets: prometheus.DefBuckets,
	})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watch_deliveries_total",
		Help: "Total number of subscriber deliveries by result",
	}, []string{"sent"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "watch_delivery_latency_seconds",
		Help:    "Time spent sending one subscriber notification",
		Buckets: prometheus.DefBuckets,
	})

	s := &PromSink{cycles: cycles, cycleTime: cycleTime, deliveries: deliveries, latency: latency}
	if err := register(reg, cycles, func(c prometheus.Collector) { s.cycles = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, cycleTime, func(c prometheus.Collector) { s.cycleTime = c.(prometheus.Histogram) }); err != nil {
		return nil, err
	}
	if err := register(reg, deliveries, func(c prometheus.Collector) { s.deliveries = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, latency, func(c prometheus.Collector) { s.latency = c.(prometheus.Histogram) }); err != nil {
		return nil, err
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, reuse func(prometheus.Collector)) error {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			reuse(are.ExistingCollector)
			return nil
		}
		return err
	}
	return nil
}

// RecordCycle increments the cycle counter and observes its duration.
func (s *PromSink) RecordCycle(res coremetrics.CycleResult) error {
	s.cycles.WithLabelValues(res.Outcome, res.Stage).Inc()
	s.cycleTime.Observe(res.Duration.Seconds())
	return nil
}

// RecordDeliveries counts the per-recipient send attempts.
func (s *PromSink) RecordDeliveries(recs []coremetrics.DeliveryResult) error {
	for _, r := range recs {
		s.deliveries.WithLabelValues(strconv.FormatBool(r.Sent)).Inc()
		s.latency.Observe(r.Latency.Seconds())
	}
	return nil
}

// StartPromServer starts an HTTP server exposing Prometheus metrics on the given address.
// The server runs until the provided context is canceled.
// A dedicated ServeMux is used to avoid interfering with other handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("prom server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
