package fire

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
)

var (
	ErrEmptyID       = errors.New("empty node id")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrUnknownNode   = errors.New("unknown node")
)

// Scope selects how the spread visited set is shared between cascades.
type Scope int

const (
	// ScopeShared keeps one visited set for every cascade of a spread epoch.
	// A node is scheduled at most once per epoch. ResetSpread starts a new epoch.
	ScopeShared Scope = iota
	// ScopePerCascade gives each SpreadFrom call its own visited set.
	ScopePerCascade
)

// String returns the config name of the scope.
func (s Scope) String() string {
	if s == ScopePerCascade {
		return "per_cascade"
	}
	return "shared"
}

// ParseScope converts a config value into a Scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "shared":
		return ScopeShared, nil
	case "per_cascade":
		return ScopePerCascade, nil
	default:
		return ScopeShared, fmt.Errorf("fire: unknown spread scope %q", s)
	}
}

// UseEdgeDelay makes SpreadFrom wait each edge's configured delay instead of
// one delay for the whole cascade.
const UseEdgeDelay = -1.0

// Edge is a directed adjacency entry.
type Edge struct {
	To    core.NodeID
	Delay float64 // Negative means the graph default
}

// GraphConfig tunes spreading.
type GraphConfig struct {
	Scope        Scope
	DefaultDelay float64 // Seconds, used by edges without their own delay
}

// Graph holds the fire nodes and the neighbour relation between them, and
// drives spread cascades.
type Graph struct {
	cfg   GraphConfig
	nodes map[core.NodeID]*Node
	order []core.NodeID
	adj   map[core.NodeID][]Edge

	nextCascade events.CascadeID
	cascades    map[events.CascadeID]*cascade
	work        []*workItem
	visited     map[core.NodeID]bool // ScopeShared epoch set
	cause       map[core.NodeID]events.CascadeID
}

// NewGraph creates an empty graph.
func NewGraph(cfg GraphConfig) *Graph {
	if cfg.DefaultDelay < 0 || !core.Finite(cfg.DefaultDelay) {
		cfg.DefaultDelay = 0
	}
	return &Graph{
		cfg:      cfg,
		nodes:    make(map[core.NodeID]*Node),
		adj:      make(map[core.NodeID][]Edge),
		cascades: make(map[events.CascadeID]*cascade),
		visited:  make(map[core.NodeID]bool),
		cause:    make(map[core.NodeID]events.CascadeID),
	}
}

// Config returns the spread configuration.
func (g *Graph) Config() GraphConfig {
	return g.cfg
}

// AddNode registers a dormant node.
func (g *Graph) AddNode(id core.NodeID, params Params) (*Node, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if _, ok := g.nodes[id]; ok {
		return nil, fmt.Errorf("fire: %w: %s", ErrDuplicateNode, id)
	}
	n := NewNode(id, params)
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n, nil
}

// Connect makes a and b neighbours of each other. A negative delay uses the
// graph default.
func (g *Graph) Connect(a, b core.NodeID, delay float64) error {
	if err := g.ConnectDirected(a, b, delay); err != nil {
		return err
	}
	return g.ConnectDirected(b, a, delay)
}

// ConnectDirected adds b to the neighbours of a only. Self loops and
// duplicate edges are ignored.
func (g *Graph) ConnectDirected(a, b core.NodeID, delay float64) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("fire: %w: %s", ErrUnknownNode, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("fire: %w: %s", ErrUnknownNode, b)
	}
	if a == b {
		return nil
	}
	for _, e := range g.adj[a] {
		if e.To == b {
			return nil
		}
	}
	if !core.Finite(delay) {
		delay = -1
	}
	g.adj[a] = append(g.adj[a], Edge{To: b, Delay: delay})
	return nil
}

// Neighbors returns the outgoing edges of id in insertion order.
func (g *Graph) Neighbors(id core.NodeID) []Edge {
	edges := g.adj[id]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id core.NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in registration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// IDs returns node ids in registration order.
func (g *Graph) IDs() []core.NodeID {
	out := make([]core.NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// BurningCount returns how many nodes are Active or Extinguishing.
func (g *Graph) BurningCount() int {
	count := 0
	for _, id := range g.order {
		if g.nodes[id].Burning() {
			count++
		}
	}
	return count
}

// Ignite ignites a node directly. Unknown ids and burning nodes return false.
// The node belongs to no cascade until SpreadFrom starts one from it.
func (g *Graph) Ignite(id core.NodeID) bool {
	n, ok := g.nodes[id]
	if !ok || !n.Ignite() {
		return false
	}
	delete(g.cause, id)
	return true
}

// ApplyExtinguish routes an extinguish contribution to a node.
func (g *Graph) ApplyExtinguish(id core.NodeID, amount float64, actor core.ActorID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	return n.ApplyExtinguish(amount, actor)
}

// Tick advances every node by dt in registration order, then advances the
// pending cascades. A leader that weakens ignites its idle neighbours right
// away. The returned events are in emission order.
func (g *Graph) Tick(dt float64) []events.Event {
	var out []events.Event
	for _, id := range g.order {
		res := g.nodes[id].Tick(dt)
		for _, s := range res.Damage {
			out = append(out, events.FireDamaged{Node: id, Actor: s.Actor, Amount: s.Amount})
		}
		if res.Weakened {
			out = append(out, events.FireWeakened{Node: id})
			if g.nodes[id].params.Leader {
				out = g.kindle(id, out)
			}
		}
		if res.Extinguished {
			out = append(out, events.FireExtinguished{Node: id, Actor: res.Actor})
		}
	}
	if dt > 0 && core.Finite(dt) {
		out = g.advance(dt, out)
	}
	return out
}

// ExtinguishAll cancels every cascade and force-extinguishes every node
// without emitting events. It returns how many nodes were burning.
func (g *Graph) ExtinguishAll() int {
	g.CancelCascades()
	count := 0
	for _, id := range g.order {
		if g.nodes[id].ForceExtinguish() {
			count++
		}
	}
	return count
}

// ResetSpread starts a new spread epoch by clearing the shared visited set.
func (g *Graph) ResetSpread() {
	for k := range g.visited {
		delete(g.visited, k)
	}
}

// Reset cancels cascades, clears the spread epoch and returns every node to
// Dormant.
func (g *Graph) Reset() {
	g.CancelCascades()
	g.ResetSpread()
	clear(g.cause)
	for _, id := range g.order {
		g.nodes[id].Reset()
	}
}

func (g *Graph) edgeDelay(e Edge) float64 {
	if e.Delay < 0 {
		return g.cfg.DefaultDelay
	}
	return e.Delay
}
