// Package feed fans simulation events and snapshots out to presentation
// clients. The tick loop never blocks on a slow client: every subscriber
// owns a bounded buffer that drops its oldest message when full.
package feed

import (
	"sync"
	"sync/atomic"
)

// SubscriberID identifies one feed client.
type SubscriberID string

// DefaultBufferSize is used when a subscriber is created with a size below 1.
const DefaultBufferSize = 64

// Subscriber is a channel-backed feed client.
type Subscriber struct {
	id       SubscriberID
	messages chan Message
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Uint64
}

// NewSubscriber creates a subscriber buffering up to bufferSize messages.
func NewSubscriber(id SubscriberID, bufferSize int) *Subscriber {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Subscriber{
		id:       id,
		messages: make(chan Message, bufferSize),
		done:     make(chan struct{}),
	}
}

// ID returns the subscriber identifier.
func (s *Subscriber) ID() SubscriberID {
	return s.id
}

// Send queues a message without blocking.
// If the buffer is full, the oldest message is dropped.
func (s *Subscriber) Send(msg Message) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.messages <- msg:
	default:
		select {
		case <-s.messages:
			s.dropped.Add(1)
		default:
		}
		select {
		case s.messages <- msg:
		default:
			s.dropped.Add(1)
		}
	}
}

// Messages returns the channel to receive messages from.
func (s *Subscriber) Messages() <-chan Message {
	return s.messages
}

// Dropped returns how many messages were discarded for this subscriber.
func (s *Subscriber) Dropped() uint64 {
	return s.dropped.Load()
}

// Done returns a channel closed by Close.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close marks the subscriber as done. Safe to call multiple times.
func (s *Subscriber) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Hub tracks subscribers and broadcasts to them.
// Thread-safe for concurrent access.
type Hub struct {
	mu   sync.RWMutex
	subs map[SubscriberID]*Subscriber
	sent atomic.Uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[SubscriberID]*Subscriber),
	}
}

// Register adds a subscriber. A subscriber with the same ID is replaced and closed.
func (h *Hub) Register(s *Subscriber) {
	h.mu.Lock()
	old, ok := h.subs[s.ID()]
	h.subs[s.ID()] = s
	h.mu.Unlock()
	if ok && old != s {
		old.Close()
	}
}

// Unregister removes and closes a subscriber.
func (h *Hub) Unregister(id SubscriberID) {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Get retrieves a subscriber by ID.
func (h *Hub) Get(id SubscriberID) (*Subscriber, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.subs[id]
	return s, ok
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast sends msg to every registered subscriber.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		s.Send(msg)
	}
	h.sent.Add(1)
}

// Broadcasts returns the number of Broadcast calls.
func (h *Hub) Broadcasts() uint64 {
	return h.sent.Load()
}

// Close unregisters and closes every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[SubscriberID]*Subscriber)
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}
