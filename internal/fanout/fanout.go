// Package fanout delivers state-change notifications to an arbitrary number
// of concurrent observers without blocking ingestion. Each subscriber owns a
// bounded queue; when it is full the oldest undelivered item for that
// subscriber alone is evicted, so a slow consumer degrades gracefully instead
// of backpressuring producers.
package fanout

import (
	"sync"
	"sync/atomic"
)

// Subscription is one observer's attachment to a Bus. Read events from C();
// Dropped reports how many notifications were evicted because the queue was
// full.
type Subscription[T any] struct {
	ch      chan T
	mu      sync.Mutex
	closed  bool
	dropped atomic.Uint64
}

// C returns the delivery channel. It is closed on Detach or bus Close.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Dropped returns the number of notifications evicted for this subscriber.
func (s *Subscription[T]) Dropped() uint64 { return s.dropped.Load() }

func (s *Subscription[T]) push(e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
		return
	default:
	}
	// Queue full: evict the oldest undelivered item. Only the lock holder
	// enqueues, so after the eviction the send cannot block.
	select {
	case <-s.ch:
		s.dropped.Add(1)
		subscriberDrops.Inc()
	default:
	}
	select {
	case s.ch <- e:
	default:
	}
}

func (s *Subscription[T]) close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	s.mu.Unlock()
}

// Bus fans events of type T out to all attached subscriptions. Notify never
// blocks and never fails; delivery is best-effort per subscriber.
type Bus[T any] struct {
	mu     sync.RWMutex
	depth  int
	subs   []*Subscription[T]
	closed bool
}

// NewBus creates a bus whose subscribers each buffer up to depth events.
// A non-positive depth is clamped to 1.
func NewBus[T any](depth int) *Bus[T] {
	if depth < 1 {
		depth = 1
	}
	return &Bus[T]{depth: depth}
}

// Attach registers a new subscriber. Attaching to a closed bus returns a
// subscription whose channel is already closed.
func (b *Bus[T]) Attach() *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, b.depth)}
	b.mu.Lock()
	if b.closed {
		sub.closed = true
		close(sub.ch)
	} else {
		b.subs = append(b.subs, sub)
	}
	b.mu.Unlock()
	return sub
}

// Detach removes the subscription and closes its channel. Detaching an
// already-detached subscription is a no-op.
func (b *Bus[T]) Detach(sub *Subscription[T]) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	sub.close()
}

// Notify delivers e to every attached subscriber without blocking.
func (b *Bus[T]) Notify(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		sub.push(e)
	}
}

// Len returns the number of attached subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches all subscribers and closes their channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}
