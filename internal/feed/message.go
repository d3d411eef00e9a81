package feed

import (
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/session"
)

// TypeSnapshot is the message type of periodic state snapshots.
const TypeSnapshot = "snapshot"

// Message is one entry of the feed as sent on the wire.
type Message struct {
	Type string  `json:"type"`
	Tick uint64  `json:"tick"`
	Time float64 `json:"time"`
	Data any     `json:"data,omitempty"`
}

type nodePayload struct {
	Node core.NodeID `json:"node"`
}

type ignitedPayload struct {
	Node    core.NodeID `json:"node"`
	Cascade uint64      `json:"cascade,omitempty"`
}

type actorPayload struct {
	Node   core.NodeID  `json:"node"`
	Actor  core.ActorID `json:"actor"`
	Amount float64      `json:"amount,omitempty"`
}

type wavePayload struct {
	Index    int     `json:"index"`
	Nodes    int     `json:"nodes,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

type stopPayload struct {
	Reason string `json:"reason"`
}

type finishPayload struct {
	Waves int `json:"waves"`
}

// Encode converts a simulation event into a feed message.
func Encode(e events.Event, tick uint64, now float64) Message {
	msg := Message{Type: e.Kind().String(), Tick: tick, Time: now}
	switch ev := e.(type) {
	case events.FireIgnited:
		msg.Data = ignitedPayload{Node: ev.Node, Cascade: uint64(ev.Cascade)}
	case events.FireExtinguished:
		msg.Data = actorPayload{Node: ev.Node, Actor: ev.Actor}
	case events.FireDamaged:
		msg.Data = actorPayload{Node: ev.Node, Actor: ev.Actor, Amount: ev.Amount}
	case events.FireWeakened:
		msg.Data = nodePayload{Node: ev.Node}
	case events.WaveStarted:
		msg.Data = wavePayload{Index: ev.Index, Nodes: ev.Nodes}
	case events.WaveCompleted:
		msg.Data = wavePayload{Index: ev.Index, Duration: ev.Duration}
	case events.ExperienceStopped:
		msg.Data = stopPayload{Reason: ev.Reason.String()}
	case events.ExperienceFinished:
		msg.Data = finishPayload{Waves: ev.Waves}
	}
	return msg
}

// SnapshotMessage wraps a session snapshot.
func SnapshotMessage(snap session.Snapshot) Message {
	return Message{Type: TypeSnapshot, Tick: snap.Tick, Time: snap.Time, Data: snap}
}

// Publisher forwards session events to a hub.
type Publisher struct {
	s       *session.Session
	hub     *Hub
	sub     events.Subscription
	every   uint64
	skipDmg bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithSnapshotEvery broadcasts a snapshot every n ticks. Zero disables snapshots.
func WithSnapshotEvery(n int) PublisherOption {
	return func(p *Publisher) {
		p.every = uint64(max(0, n))
	}
}

// WithoutDamage suppresses per-tick damage events.
func WithoutDamage() PublisherOption {
	return func(p *Publisher) {
		p.skipDmg = true
	}
}

// Attach subscribes a publisher to the session bus. Must be called from the
// goroutine that owns the session.
func Attach(s *session.Session, hub *Hub, opts ...PublisherOption) *Publisher {
	p := &Publisher{s: s, hub: hub}
	for _, opt := range opts {
		opt(p)
	}
	p.sub = s.Bus().Subscribe(p.onEvent)
	return p
}

func (p *Publisher) onEvent(e events.Event) {
	if p.skipDmg && e.Kind() == events.KindFireDamaged {
		return
	}
	p.hub.Broadcast(Encode(e, p.s.Ticks(), p.s.Scheduler().Now()))
}

// OnTick is a session.Runner tick observer broadcasting snapshots.
func (p *Publisher) OnTick(snap session.Snapshot) {
	if p.every == 0 || snap.Tick%p.every != 0 {
		return
	}
	p.hub.Broadcast(SnapshotMessage(snap))
}

// Detach removes the bus subscription.
func (p *Publisher) Detach() bool {
	return p.s.Bus().Unsubscribe(p.sub)
}
