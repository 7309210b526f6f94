package metrics

import coremetrics "github.com/akostiuk/zoewatch/core/metrics"

// MultiSink fans measurements out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCycle forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCycle(res coremetrics.CycleResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordCycle(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordDeliveries forwards the records to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDeliveries(recs []coremetrics.DeliveryResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDeliveries(recs); err != nil {
			return err
		}
	}
	return nil
}
