// Package eventbus is an in-process events.Publisher. Subscribers receive
// messages for the topics they asked for on buffered channels.
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kilianp07/loadshare/core/events"
)

var _ events.Publisher = (*Bus)(nil)

// Message is one published payload.
type Message struct {
	Topic   string
	Payload any
}

type subscriber struct {
	ch    chan Message
	topic string
}

// Bus fans messages out to subscribers. Delivery is non-blocking: a full
// subscriber misses the message and the drop is counted.
type Bus struct {
	mu      sync.RWMutex
	subs    []subscriber
	closed  bool
	dropped atomic.Int64
	buffer  int
}

// New creates a Bus whose subscriber channels hold buffer messages.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 8
	}
	return &Bus{buffer: buffer}
}

// Publish delivers payload to every subscriber of topic and to wildcard
// subscribers. It never blocks and never fails while the bus is open.
func (b *Bus) Publish(_ context.Context, topic string, payload any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	msg := Message{Topic: topic, Payload: payload}
	for _, s := range b.subs {
		if s.topic != "" && s.topic != topic {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

// Dropped reports how many deliveries were skipped on full channels.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Subscribe registers a subscriber for topic. An empty topic receives
// everything.
func (b *Bus) Subscribe(topic string) <-chan Message {
	ch := make(chan Message, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, subscriber{ch: ch, topic: topic})
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(s.ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
