// Package emergency retains the most recent broadcast events so observers
// attaching late can backfill history they missed. Events are immutable once
// appended; overflow silently evicts the oldest.
package emergency

import (
	"sync"

	"github.com/kilianp07/v2x/core/model"
)

// History is a bounded ring buffer of emergency events. Safe for concurrent
// use.
type History struct {
	mu    sync.RWMutex
	buf   []model.DENM
	next  int
	count int
}

// New returns a history retaining at most capacity events. A non-positive
// capacity is clamped to 1.
func New(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]model.DENM, capacity)}
}

// Append stores an event, evicting the oldest when full.
func (h *History) Append(e model.DENM) {
	h.mu.Lock()
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
	h.mu.Unlock()
}

// Recent returns up to n of the latest events, oldest first and most recent
// last. The result is a copy; the live buffer is never exposed.
func (h *History) Recent(n int) []model.DENM {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n > h.count {
		n = h.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]model.DENM, n)
	start := h.next - n
	if start < 0 {
		start += len(h.buf)
	}
	for i := 0; i < n; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
