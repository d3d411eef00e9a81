package fire

import "github.com/vovakirdan/firewave/internal/core"

// Share is the part of a coalesced extinguish amount contributed by one actor.
type Share struct {
	Actor  core.ActorID
	Amount float64
}

// Drained is the result of emptying an Accumulator.
type Drained struct {
	Total  float64
	Last   core.ActorID
	Shares []Share // In first-contribution order
}

// Accumulator coalesces every extinguish contribution that arrives between two
// ticks into a single amount. It is drained at most once per tick.
type Accumulator struct {
	pending float64
	shares  map[core.ActorID]float64
	order   []core.ActorID
	last    core.ActorID
	count   int
}

// Add records a contribution. Callers filter out non-positive amounts.
func (a *Accumulator) Add(amount float64, actor core.ActorID) {
	if a.shares == nil {
		a.shares = make(map[core.ActorID]float64)
	}
	if _, seen := a.shares[actor]; !seen {
		a.order = append(a.order, actor)
	}
	a.shares[actor] += amount
	a.pending += amount
	a.last = actor
	a.count++
}

// Pending returns the sum of contributions not yet applied.
func (a *Accumulator) Pending() float64 {
	return a.pending
}

// Contributions returns how many Add calls are pending.
func (a *Accumulator) Contributions() int {
	return a.count
}

// LastActor returns the actor of the most recent contribution.
func (a *Accumulator) LastActor() core.ActorID {
	return a.last
}

// Drain returns the pending total with its attribution and resets to zero.
func (a *Accumulator) Drain() Drained {
	d := Drained{Total: a.pending, Last: a.last}
	if len(a.order) > 0 {
		d.Shares = make([]Share, 0, len(a.order))
		for _, id := range a.order {
			d.Shares = append(d.Shares, Share{Actor: id, Amount: a.shares[id]})
		}
	}
	a.Reset()
	return d
}

// Reset discards all pending contributions.
func (a *Accumulator) Reset() {
	a.pending = 0
	a.count = 0
	a.order = a.order[:0]
	for k := range a.shares {
		delete(a.shares, k)
	}
}
