package eventbus

import (
	"context"
	"testing"

	"github.com/kilianp07/loadshare/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New(0)
	ch := bus.Subscribe(events.TopicLoadMatch)
	if err := bus.Publish(context.Background(), events.TopicLoadMatch, "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	v := <-ch
	if v.Payload != "hello" || v.Topic != events.TopicLoadMatch {
		t.Fatalf("unexpected message %+v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusTopicFilter(t *testing.T) {
	bus := New(4)
	match := bus.Subscribe(events.TopicLoadMatch)
	all := bus.Subscribe("")
	_ = bus.Publish(context.Background(), "other", 1)
	_ = bus.Publish(context.Background(), events.TopicLoadMatch, 2)

	if got := len(match); got != 1 {
		t.Fatalf("topic subscriber got %d messages", got)
	}
	if got := len(all); got != 2 {
		t.Fatalf("wildcard subscriber got %d messages", got)
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New(1)
	_ = bus.Subscribe("")
	_ = bus.Publish(context.Background(), "t", 1)
	_ = bus.Publish(context.Background(), "t", 2)
	if bus.Dropped() != 1 {
		t.Fatalf("expected one drop, got %d", bus.Dropped())
	}
}

func TestBusClose(t *testing.T) {
	bus := New(0)
	ch1 := bus.Subscribe("")
	ch2 := bus.Subscribe("x")
	if err := bus.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	if err := bus.Publish(context.Background(), "x", 1); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New(0)
	ch := bus.Subscribe("")
	_ = bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
