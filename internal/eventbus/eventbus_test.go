package eventbus

import (
	"testing"

	"github.com/akostiuk/zoewatch/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(events.CycleEvent{CycleID: "c1", Outcome: "no_change"})
	v := <-ch
	ev, ok := v.(events.CycleEvent)
	if !ok || ev.CycleID != "c1" {
		t.Fatalf("unexpected event: %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestBusFullSubscriberDoesNotBlock(t *testing.T) {
	bus := New()
	_ = bus.Subscribe()
	for i := 0; i < 32; i++ {
		bus.Publish(events.DeliveryEvent{ChatID: int64(i)})
	}
	bus.Close()
}
