package events

// Handler receives dispatched events.
type Handler func(Event)

// Subscription is the token returned by Subscribe. Passing it to Unsubscribe
// removes exactly the handler it was issued for.
type Subscription uint64

type subscriber struct {
	id      Subscription
	kinds   map[Kind]bool // nil means all kinds
	handler Handler
}

// Bus is a single-threaded callback registry.
//
// Events are queued by Publish and delivered by Dispatch in FIFO order.
// Handlers run in registration order. Events published from inside a handler
// are delivered in the same Dispatch call, after the current event.
// Bus is owned by the simulation tick loop and is not safe for concurrent use.
type Bus struct {
	subs    []subscriber
	nextID  Subscription
	pending []Event
	history uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for the given kinds (all kinds when none given).
func (b *Bus) Subscribe(h Handler, kinds ...Kind) Subscription {
	b.nextID++
	s := subscriber{id: b.nextID, handler: h}
	if len(kinds) > 0 {
		s.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
	b.subs = append(b.subs, s)
	return s.id
}

// Unsubscribe removes a handler. Unknown or already removed tokens are ignored.
func (b *Bus) Unsubscribe(id Subscription) bool {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish queues an event for the next Dispatch.
func (b *Bus) Publish(evts ...Event) {
	b.pending = append(b.pending, evts...)
}

// Dispatch delivers all queued events and returns how many were delivered.
func (b *Bus) Dispatch() int {
	n := 0
	for len(b.pending) > 0 {
		ev := b.pending[0]
		b.pending = b.pending[1:]
		n++
		// Snapshot so handlers may (un)subscribe while we iterate.
		subs := b.subs
		for _, s := range subs {
			if s.kinds != nil && !s.kinds[ev.Kind()] {
				continue
			}
			if !b.active(s.id) {
				continue
			}
			s.handler(ev)
		}
	}
	b.pending = nil
	b.history += uint64(n)
	return n
}

func (b *Bus) active(id Subscription) bool {
	for _, s := range b.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.pending)
}

// HandlerCount returns the number of registered handlers.
func (b *Bus) HandlerCount() int {
	return len(b.subs)
}

// Delivered returns the total number of events dispatched so far.
func (b *Bus) Delivered() uint64 {
	return b.history
}
