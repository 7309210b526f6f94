package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/akostiuk/zoewatch/core/metrics"
)

func TestPromSinkRecordCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	rec := coremetrics.CycleResult{
		CycleID:  "c1",
		Outcome:  "first_publication",
		Stage:    "",
		Duration: 120 * time.Millisecond,
		Time:     time.Now(),
	}
	if err := sink.RecordCycle(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP watch_cycles_total Total number of watch cycles by outcome and stage
# TYPE watch_cycles_total counter
watch_cycles_total{outcome="first_publication",stage=""} 1
`
	if err := testutil.CollectAndCompare(sink.cycles, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.cycleTime); c == 0 {
		t.Errorf("cycle duration not recorded")
	}
}

func TestPromSinkRecordDeliveries(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	recs := []coremetrics.DeliveryResult{
		{ChatID: 1, Group: "1.1", Sent: true, Latency: 30 * time.Millisecond},
		{ChatID: 2, Group: "1.2", Sent: false, Latency: 10 * time.Second},
	}
	if err := sink.RecordDeliveries(recs); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP watch_deliveries_total Total number of subscriber deliveries by result
# TYPE watch_deliveries_total counter
watch_deliveries_total{sent="false"} 1
watch_deliveries_total{sent="true"} 1
`
	if err := testutil.CollectAndCompare(sink.deliveries, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}

type recordingSink struct {
	cycles     int
	deliveries int
	err        error
}

func (r *recordingSink) RecordCycle(coremetrics.CycleResult) error {
	r.cycles++
	return r.err
}

func (r *recordingSink) RecordDeliveries([]coremetrics.DeliveryResult) error {
	r.deliveries++
	return r.err
}

func TestMultiSinkFanout(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordCycle(coremetrics.CycleResult{}); err != nil {
		t.Fatalf("record cycle: %v", err)
	}
	if err := m.RecordDeliveries(nil); err != nil {
		t.Fatalf("record deliveries: %v", err)
	}
	if a.cycles != 1 || b.cycles != 1 || a.deliveries != 1 || b.deliveries != 1 {
		t.Fatalf("fanout incomplete: %+v %+v", a, b)
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordCycle(coremetrics.CycleResult{}); !errors.Is(err, boom) {
		t.Fatalf("expected first sink error, got %v", err)
	}
	if b.cycles != 0 {
		t.Fatalf("second sink reached after error")
	}
}

func TestInfluxFallbackToNop(t *testing.T) {
	cfg := coremetrics.Config{InfluxURL: "http://127.0.0.1:1", InfluxOrg: "org", InfluxBucket: "bucket"}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
