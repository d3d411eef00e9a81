// Package input carries extinguish contributions from input producers into
// the simulation tick.
package input

import (
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/firewave/internal/core"
)

// Contribution is one extinguish sample from an actor aimed at a node.
// An empty Node registers activity without touching any fire.
type Contribution struct {
	Node   core.NodeID
	Actor  core.ActorID
	Amount float64
}

// Activity reports whether the contribution only signals presence.
func (c Contribution) Activity() bool {
	return c.Node == ""
}

// Queue is a multi-producer, single-consumer buffer between input producers
// and the tick loop.
//
// Thread-Safety:
//   - Push: any goroutine
//   - Drain: the tick loop only
//
// Overflow: when Capacity is reached the oldest contribution is dropped.
type Queue struct {
	mu       sync.Mutex
	buf      []Contribution
	spare    []Contribution
	capacity int
	dropped  atomic.Uint64
	pushed   atomic.Uint64
}

// NewQueue creates a queue. A capacity <= 0 means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Push appends a contribution.
func (q *Queue) Push(c Contribution) {
	q.mu.Lock()
	if q.capacity > 0 && len(q.buf) >= q.capacity {
		copy(q.buf, q.buf[1:])
		q.buf = q.buf[:len(q.buf)-1]
		q.dropped.Add(1)
	}
	q.buf = append(q.buf, c)
	q.mu.Unlock()
	q.pushed.Add(1)
}

// Drain returns every pending contribution in arrival order. The returned
// slice is valid until the next Drain.
func (q *Queue) Drain() []Contribution {
	q.mu.Lock()
	out := q.buf
	q.buf = q.spare[:0]
	q.spare = out
	q.mu.Unlock()
	return out
}

// Len returns the number of pending contributions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Dropped returns how many contributions were discarded on overflow.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Pushed returns how many contributions were ever pushed.
func (q *Queue) Pushed() uint64 {
	return q.pushed.Load()
}
