package metrics

import "time"

// CycleResult describes one completed or skipped fetch cycle.
type CycleResult struct {
	CycleID  string
	Outcome  string
	Stage    string
	Date     time.Time
	Changed  int
	Duration time.Duration
	Time     time.Time
}

// DeliveryResult describes one per-recipient send attempt.
type DeliveryResult struct {
	CycleID string
	ChatID  int64
	Group   string
	Sent    bool
	Latency time.Duration
	Time    time.Time
}

// Sink records watch cycle measurements for observability purposes.
type Sink interface {
	RecordCycle(res CycleResult) error
	RecordDeliveries(recs []DeliveryResult) error
}

// NopSink discards all measurements.
type NopSink struct{}

func (NopSink) RecordCycle(CycleResult) error           { return nil }
func (NopSink) RecordDeliveries([]DeliveryResult) error { return nil }
