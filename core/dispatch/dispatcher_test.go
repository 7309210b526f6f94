package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/akostiuk/zoewatch/core/events"
	"github.com/akostiuk/zoewatch/infra/logger"
	"github.com/akostiuk/zoewatch/internal/eventbus"
)

type fakeNotifier struct {
	mu      sync.Mutex
	sent    map[int64]string
	failIDs map[int64]bool
	delay   time.Duration
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[int64]string), failIDs: make(map[int64]bool)}
}

func (n *fakeNotifier) Send(_ context.Context, chatID int64, text string) error {
	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failIDs[chatID] {
		return fmt.Errorf("send failed")
	}
	n.sent[chatID] = text
	return nil
}

func TestDispatchFailureIsolation(t *testing.T) {
	ResetMetrics(nil)
	n := newFakeNotifier()
	n.failIDs[2] = true
	d, err := NewDispatcher(n, time.Second, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}

	res := d.Dispatch(context.Background(), "c1", []Delivery{
		{ChatID: 1, Group: "1.1", Text: "a"},
		{ChatID: 2, Group: "1.2", Text: "b"},
		{ChatID: 3, Group: "2.1", Text: "c"},
	})

	if res.SentCount() != 2 {
		t.Fatalf("expected 2 sent, got %d", res.SentCount())
	}
	if res.Sent[2] {
		t.Fatalf("recipient 2 must be marked failed")
	}
	if res.Errors[2] == nil {
		t.Fatalf("recipient 2 error must be recorded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent[1] != "a" || n.sent[3] != "c" {
		t.Fatalf("other recipients must still be served: %v", n.sent)
	}
}

func TestDispatchEmptyPlan(t *testing.T) {
	ResetMetrics(nil)
	d, _ := NewDispatcher(newFakeNotifier(), time.Second, nil, nil, logger.NopLogger{})
	res := d.Dispatch(context.Background(), "c1", nil)
	if len(res.Sent) != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestDispatchPublishesEvents(t *testing.T) {
	ResetMetrics(nil)
	bus := eventbus.New()
	ch := bus.Subscribe()
	d, _ := NewDispatcher(newFakeNotifier(), time.Second, nil, bus, logger.NopLogger{})
	d.Dispatch(context.Background(), "c2", []Delivery{{ChatID: 7, Group: "5.1", Text: "x"}})

	select {
	case v := <-ch:
		ev, ok := v.(events.DeliveryEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", v)
		}
		if ev.ChatID != 7 || !ev.Sent || ev.CycleID != "c2" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no delivery event published")
	}
}

func TestDispatchConcurrent(t *testing.T) {
	ResetMetrics(nil)
	n := newFakeNotifier()
	n.delay = 50 * time.Millisecond
	d, _ := NewDispatcher(n, time.Second, nil, nil, logger.NopLogger{})

	var dls []Delivery
	for i := int64(1); i <= 20; i++ {
		dls = append(dls, Delivery{ChatID: i, Group: "1.1", Text: "w"})
	}
	start := time.Now()
	res := d.Dispatch(context.Background(), "c3", dls)
	elapsed := time.Since(start)

	if res.SentCount() != 20 {
		t.Fatalf("expected 20 sent, got %d", res.SentCount())
	}
	// serial execution would need a full second
	if elapsed > 500*time.Millisecond {
		t.Fatalf("deliveries did not run concurrently: %v", elapsed)
	}
}

func TestNewDispatcherNilNotifier(t *testing.T) {
	if _, err := NewDispatcher(nil, time.Second, nil, nil, logger.NopLogger{}); err == nil {
		t.Fatalf("expected error")
	}
}
