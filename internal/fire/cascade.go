package fire

import (
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
)

// dueEpsilon absorbs float drift from summing fixed steps, so a 1s delay
// driven by 0.1s ticks fires on the tenth tick.
const dueEpsilon = 1e-9

type cascade struct {
	id      events.CascadeID
	origin  core.NodeID
	delay   float64             // UseEdgeDelay or a fixed hop delay
	scale   float64             // Applied to edge delays under UseEdgeDelay
	visited map[core.NodeID]bool // Own set under ScopePerCascade
	pending int
}

type workItem struct {
	c         *cascade
	node      core.NodeID
	remaining float64
}

// SpreadFrom starts a breadth-first spread from origin. Every not yet burning
// neighbour that has not been visited waits delay seconds, ignites, and then
// spreads further with the same delay. Pass UseEdgeDelay to wait each edge's
// own delay. An unknown origin returns 0.
func (g *Graph) SpreadFrom(origin core.NodeID, delay float64) events.CascadeID {
	if !core.Finite(delay) || (delay < 0 && delay != UseEdgeDelay) {
		delay = UseEdgeDelay
	}
	return g.spread(origin, delay, 1)
}

// SpreadScaled starts a cascade that waits each edge's own delay multiplied
// by factor, so slow and fast spreads keep the shape of the layout.
func (g *Graph) SpreadScaled(origin core.NodeID, factor float64) events.CascadeID {
	if factor < 0 || !core.Finite(factor) {
		factor = 1
	}
	return g.spread(origin, UseEdgeDelay, factor)
}

func (g *Graph) spread(origin core.NodeID, delay, scale float64) events.CascadeID {
	if _, ok := g.nodes[origin]; !ok {
		return 0
	}
	g.nextCascade++
	c := &cascade{id: g.nextCascade, origin: origin, delay: delay, scale: scale}
	g.cause[origin] = c.id
	if g.cfg.Scope == ScopePerCascade {
		c.visited = make(map[core.NodeID]bool)
	}
	g.markVisited(c, origin)
	g.cascades[c.id] = c
	g.enqueueNeighbors(c, origin, 0)
	if c.pending == 0 {
		delete(g.cascades, c.id)
	}
	return c.id
}

// PendingCount returns how many ignitions the cascade still has scheduled.
func (g *Graph) PendingCount(id events.CascadeID) int {
	if c, ok := g.cascades[id]; ok {
		return c.pending
	}
	return 0
}

// PendingTotal returns the number of scheduled ignitions over all cascades.
func (g *Graph) PendingTotal() int {
	return len(g.work)
}

// CascadeActive reports whether the cascade still has pending work.
func (g *Graph) CascadeActive(id events.CascadeID) bool {
	return g.PendingCount(id) > 0
}

// CancelCascade drops all pending work of one cascade.
func (g *Graph) CancelCascade(id events.CascadeID) {
	c, ok := g.cascades[id]
	if !ok {
		return
	}
	kept := g.work[:0]
	for _, w := range g.work {
		if w.c == c {
			g.unschedule(w.node)
			continue
		}
		kept = append(kept, w)
	}
	clearTail(g.work, len(kept))
	g.work = kept
	delete(g.cascades, id)
}

// CancelCascades drops all pending spread work.
func (g *Graph) CancelCascades() {
	for _, w := range g.work {
		g.unschedule(w.node)
	}
	clearTail(g.work, 0)
	g.work = g.work[:0]
	for id := range g.cascades {
		delete(g.cascades, id)
	}
}

func (g *Graph) visitedSet(c *cascade) map[core.NodeID]bool {
	if c.visited != nil {
		return c.visited
	}
	return g.visited
}

func (g *Graph) markVisited(c *cascade, id core.NodeID) {
	g.visitedSet(c)[id] = true
}

func (g *Graph) enqueueNeighbors(c *cascade, from core.NodeID, carry float64) {
	set := g.visitedSet(c)
	for _, e := range g.adj[from] {
		if set[e.To] {
			continue
		}
		n := g.nodes[e.To]
		if n.Burning() {
			continue
		}
		set[e.To] = true
		d := c.delay
		if d == UseEdgeDelay {
			d = g.edgeDelay(e) * c.scale
		}
		n.scheduled++
		c.pending++
		g.work = append(g.work, &workItem{c: c, node: e.To, remaining: d + carry})
	}
}

// advance counts down every pending item by dt and fires the ones that are
// due. Overshoot carries into the next hop and zero-delay hops chain within
// the same call.
func (g *Graph) advance(dt float64, out []events.Event) []events.Event {
	for _, w := range g.work {
		w.remaining -= dt
	}
	for {
		idx := -1
		for i, w := range g.work {
			if w.remaining <= dueEpsilon {
				idx = i
				break
			}
		}
		if idx < 0 {
			return out
		}
		w := g.work[idx]
		copy(g.work[idx:], g.work[idx+1:])
		g.work[len(g.work)-1] = nil
		g.work = g.work[:len(g.work)-1]

		g.unschedule(w.node)
		w.c.pending--
		if g.nodes[w.node].Ignite() {
			g.cause[w.node] = w.c.id
			out = append(out, events.FireIgnited{Node: w.node, Cascade: w.c.id})
			carry := w.remaining
			if carry > 0 {
				carry = 0
			}
			g.enqueueNeighbors(w.c, w.node, carry)
		}
		if w.c.pending == 0 {
			delete(g.cascades, w.c.id)
		}
	}
}

// kindle ignites the idle neighbours of a weakened leader. The new fires are
// credited to the cascade that lit the leader.
func (g *Graph) kindle(id core.NodeID, out []events.Event) []events.Event {
	c := g.cause[id]
	for _, e := range g.adj[id] {
		if !g.nodes[e.To].Ignite() {
			continue
		}
		g.visited[e.To] = true
		g.cause[e.To] = c
		out = append(out, events.FireIgnited{Node: e.To, Cascade: c})
	}
	return out
}

func (g *Graph) unschedule(id core.NodeID) {
	if n := g.nodes[id]; n != nil && n.scheduled > 0 {
		n.scheduled--
	}
}

func clearTail(items []*workItem, from int) {
	for i := from; i < len(items); i++ {
		items[i] = nil
	}
}
