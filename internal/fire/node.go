// Package fire implements the fire points of the installation: intensity
// dynamics under extinguishing input, and spreading between neighbouring
// points.
package fire

import (
	"math"

	"github.com/vovakirdan/firewave/internal/core"
)

// State is derived from a node's intensity and input, never set directly.
type State int

const (
	StateDormant       State = iota // Not ignited since the last reset
	StateIgniting                   // Scheduled by a pending spread
	StateActive                     // Burning, no extinguish input
	StateExtinguishing              // Burning and receiving input
	StateExtinguished               // Burned and was put out
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDormant:
		return "dormant"
	case StateIgniting:
		return "igniting"
	case StateActive:
		return "active"
	case StateExtinguishing:
		return "extinguishing"
	case StateExtinguished:
		return "extinguished"
	default:
		return "unknown"
	}
}

// Burning reports whether the state accepts extinguish input.
func (s State) Burning() bool {
	return s == StateActive || s == StateExtinguishing
}

// Params are the per-node tuning values.
type Params struct {
	MaxIntensity         float64 // Intensity of a freshly ignited fire
	RekindleRate         float64 // Intensity regained per second without input
	ExtinguishMultiplier float64 // Scale applied to extinguish amounts
	WeakenFraction       float64 // Fraction of max below which FireWeakened fires; 0 disables
	Leader               bool    // Ignites its idle neighbours once per ignition when weakened
}

// DefaultParams returns the tuning of the installation's fire points.
func DefaultParams() Params {
	return Params{
		MaxIntensity:         100,
		RekindleRate:         5,
		ExtinguishMultiplier: 1,
		WeakenFraction:       0.5,
	}
}

func (p Params) sanitized() Params {
	if p.MaxIntensity <= 0 || !core.Finite(p.MaxIntensity) {
		p.MaxIntensity = DefaultParams().MaxIntensity
	}
	if p.RekindleRate < 0 || !core.Finite(p.RekindleRate) {
		p.RekindleRate = 0
	}
	if p.ExtinguishMultiplier < 0 || !core.Finite(p.ExtinguishMultiplier) {
		p.ExtinguishMultiplier = 0
	}
	p.WeakenFraction = core.ClampF(p.WeakenFraction, 0, 1)
	return p
}

// TickResult reports what happened to a node during one Tick.
type TickResult struct {
	Damage       []Share      // Intensity removed, split by contributing actor
	Weakened     bool         // Crossed the weaken threshold this tick
	Extinguished bool         // Reached zero this tick
	Actor        core.ActorID // Attribution when Extinguished
}

// Node is one fire point. It owns its intensity and accumulator; neighbour
// relations live in Graph.
type Node struct {
	id     core.NodeID
	params Params

	intensity     float64
	burning       bool
	spent         bool // Was ignited since reset and is out now
	extinguishing bool // Input was applied during the last tick
	weakened      bool
	scheduled     int // Pending spread work items targeting this node
	ignitions     int

	acc       Accumulator
	lastActor core.ActorID
}

// NewNode creates a dormant node.
func NewNode(id core.NodeID, params Params) *Node {
	return &Node{
		id:        id,
		params:    params.sanitized(),
		lastActor: core.ActorUnknown,
	}
}

// ID returns the node identifier.
func (n *Node) ID() core.NodeID {
	return n.id
}

// Params returns the node's tuning.
func (n *Node) Params() Params {
	return n.params
}

// Intensity returns the current intensity in [0, MaxIntensity].
func (n *Node) Intensity() float64 {
	return n.intensity
}

// Normalized returns intensity / MaxIntensity.
func (n *Node) Normalized() float64 {
	return n.intensity / n.params.MaxIntensity
}

// LastActor returns the last actor whose input reached the node.
func (n *Node) LastActor() core.ActorID {
	return n.lastActor
}

// Ignitions returns how many times the node has been ignited.
func (n *Node) Ignitions() int {
	return n.ignitions
}

// Pending returns the extinguish amount waiting for the next tick.
func (n *Node) Pending() float64 {
	return n.acc.Pending()
}

// State derives the lifecycle state.
func (n *Node) State() State {
	switch {
	case n.burning && (n.extinguishing || n.acc.Pending() > 0):
		return StateExtinguishing
	case n.burning:
		return StateActive
	case n.scheduled > 0:
		return StateIgniting
	case n.spent:
		return StateExtinguished
	default:
		return StateDormant
	}
}

// Burning reports whether the node is Active or Extinguishing.
func (n *Node) Burning() bool {
	return n.burning
}

// Ignite sets the node to full intensity. It is a no-op returning false when
// the node is already burning.
func (n *Node) Ignite() bool {
	if n.burning {
		return false
	}
	n.intensity = n.params.MaxIntensity
	n.burning = true
	n.spent = false
	n.extinguishing = false
	n.weakened = false
	n.acc.Reset()
	n.lastActor = core.ActorUnknown
	n.ignitions++
	return true
}

// ApplyExtinguish buffers an extinguish contribution until the next Tick.
// Input for a node that is not burning, and non-positive amounts, are ignored.
func (n *Node) ApplyExtinguish(amount float64, actor core.ActorID) bool {
	if !n.burning || !(amount > 0) || !core.Finite(amount) {
		return false
	}
	n.acc.Add(amount, actor)
	n.lastActor = actor
	return true
}

// Tick integrates dt seconds. Pending input is applied exactly once; without
// input the fire rekindles. Extinguished is reported only on the tick that
// reaches zero.
func (n *Node) Tick(dt float64) TickResult {
	var res TickResult
	if !n.burning || !(dt > 0) || !core.Finite(dt) {
		return res
	}

	if n.acc.Pending() > 0 {
		d := n.acc.Drain()
		reduction := math.Min(d.Total*n.params.ExtinguishMultiplier*dt, n.intensity)
		n.intensity -= reduction
		n.extinguishing = true
		n.lastActor = d.Last
		res.Damage = splitReduction(reduction, d)
	} else {
		n.extinguishing = false
		n.intensity += n.params.RekindleRate * dt
	}

	n.intensity = core.ClampF(n.intensity, 0, n.params.MaxIntensity)

	if !n.weakened && n.params.WeakenFraction > 0 &&
		n.intensity < n.params.WeakenFraction*n.params.MaxIntensity {
		n.weakened = true
		res.Weakened = true
	}

	if n.intensity <= 0 {
		n.burning = false
		n.spent = true
		n.extinguishing = false
		res.Extinguished = true
		res.Actor = n.lastActor
	}
	return res
}

// ForceExtinguish puts the fire out without attribution, cancelling any
// pending input. It returns whether the node was burning.
func (n *Node) ForceExtinguish() bool {
	was := n.burning
	if n.burning || n.scheduled > 0 {
		n.spent = true
	}
	n.intensity = 0
	n.burning = false
	n.extinguishing = false
	n.scheduled = 0
	n.acc.Reset()
	return was
}

// Reset returns the node to Dormant.
func (n *Node) Reset() {
	n.intensity = 0
	n.burning = false
	n.spent = false
	n.extinguishing = false
	n.weakened = false
	n.scheduled = 0
	n.acc.Reset()
	n.lastActor = core.ActorUnknown
}

// splitReduction divides the applied reduction between actors in proportion
// to their share of the coalesced amount.
func splitReduction(reduction float64, d Drained) []Share {
	if reduction <= 0 || d.Total <= 0 || len(d.Shares) == 0 {
		return nil
	}
	out := make([]Share, 0, len(d.Shares))
	for _, s := range d.Shares {
		out = append(out, Share{Actor: s.Actor, Amount: reduction * s.Amount / d.Total})
	}
	return out
}
