package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akostiuk/zoewatch/core/events"
	"github.com/akostiuk/zoewatch/core/logger"
	"github.com/akostiuk/zoewatch/core/metrics"
	"github.com/akostiuk/zoewatch/core/notify"
	"github.com/akostiuk/zoewatch/internal/eventbus"
)

// Result aggregates per-recipient outcomes of one dispatch run. Failures stay
// inside the maps; Dispatch itself never fails.
type Result struct {
	Sent   map[int64]bool
	Errors map[int64]error
}

// SentCount returns the number of successful deliveries.
func (r Result) SentCount() int {
	n := 0
	for _, ok := range r.Sent {
		if ok {
			n++
		}
	}
	return n
}

// Dispatcher executes planned deliveries concurrently. Each recipient is
// served by its own goroutine with its own timeout, so a slow or failing send
// never blocks or aborts the rest of the batch.
type Dispatcher struct {
	notifier notify.Notifier
	timeout  time.Duration
	sink     metrics.Sink
	bus      eventbus.EventBus
	log      logger.Logger
}

// NewDispatcher creates a Dispatcher sending through n. If timeout is zero, a
// default of ten seconds per recipient is used.
func NewDispatcher(n notify.Notifier, timeout time.Duration, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger) (*Dispatcher, error) {
	if n == nil {
		return nil, fmt.Errorf("dispatch: nil notifier provided to NewDispatcher")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Dispatcher{notifier: n, timeout: timeout, sink: sink, bus: bus, log: log}, nil
}

// Dispatch sends every delivery and records per-recipient outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, cycleID string, deliveries []Delivery) Result {
	res := Result{
		Sent:   make(map[int64]bool, len(deliveries)),
		Errors: make(map[int64]error),
	}
	if len(deliveries) == 0 {
		return res
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		recs []metrics.DeliveryResult
	)
	update := func(dl Delivery, err error, dur time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Errors[dl.ChatID] = err
			d.log.Warnf("delivery to %d failed: %v", dl.ChatID, err)
		}
		res.Sent[dl.ChatID] = err == nil
		deliveriesTotal.WithLabelValues(statusLabel(err)).Inc()
		deliveryLatency.Observe(dur.Seconds())
		if d.bus != nil {
			d.bus.Publish(events.DeliveryEvent{
				CycleID: cycleID,
				ChatID:  dl.ChatID,
				Group:   dl.Group,
				Sent:    err == nil,
				Err:     err,
				Latency: dur,
			})
		}
		recs = append(recs, metrics.DeliveryResult{
			CycleID: cycleID,
			ChatID:  dl.ChatID,
			Group:   string(dl.Group),
			Sent:    err == nil,
			Latency: dur,
			Time:    time.Now(),
		})
	}

	for _, dl := range deliveries {
		wg.Add(1)
		go func(dl Delivery) {
			defer wg.Done()
			start := time.Now()
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			err := d.notifier.Send(sendCtx, dl.ChatID, dl.Text)
			cancel()
			update(dl, err, time.Since(start))
		}(dl)
	}
	wg.Wait()

	if err := d.sink.RecordDeliveries(recs); err != nil {
		d.log.Errorf("delivery metrics error: %v", err)
	}
	d.log.Infof("dispatched %d/%d deliveries", res.SentCount(), len(deliveries))
	return res
}

func statusLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "sent"
}
