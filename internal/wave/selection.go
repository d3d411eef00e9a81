package wave

import (
	"math/rand"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/skill"
)

// Pick is the set of fires one actor has to clear in a wave.
type Pick struct {
	Actor core.ActorID
	Level skill.Level
	Nodes []core.NodeID
	Delay float64 // Spread delay of these fires
}

// Assignment lists picks in selection order.
type Assignment []Pick

// NodeCount returns the total number of assigned fires.
func (a Assignment) NodeCount() int {
	n := 0
	for _, p := range a {
		n += len(p.Nodes)
	}
	return n
}

// Nodes returns every assigned fire in selection order.
func (a Assignment) Nodes() []core.NodeID {
	out := make([]core.NodeID, 0, a.NodeCount())
	for _, p := range a {
		out = append(out, p.Nodes...)
	}
	return out
}

// seedAssignment gives the seed fire to the first ranked actor, or to the
// unknown actor when nobody is active.
func seedAssignment(cfg Config, ranked []core.ActorID, level func(core.ActorID) skill.Level) Assignment {
	actor := core.ActorUnknown
	if len(ranked) > 0 {
		actor = ranked[0]
	}
	lvl := level(actor)
	return Assignment{{
		Actor: actor,
		Level: lvl,
		Nodes: []core.NodeID{cfg.SeedNode},
		Delay: cfg.spreadDelay(lvl),
	}}
}

// selectFires assigns fires for wave > 0. Actors are visited in ranked order;
// each draws fireCount[level] not yet selected nodes from its region, capped by
// what is left of the wave budget.
func selectFires(cfg Config, wave int, ranked []core.ActorID, level func(core.ActorID) skill.Level, all []core.NodeID, rng *rand.Rand) Assignment {
	budget := cfg.budget(wave)
	taken := make(map[core.NodeID]bool)
	total := 0

	var out Assignment
	for _, actor := range ranked {
		lvl := level(actor)
		want := cfg.fireCount(lvl)
		if budget > 0 {
			want = min(want, budget-total)
		}
		if want <= 0 {
			continue
		}

		region, ok := cfg.Regions[actor]
		if !ok {
			region = all
		}
		pool := make([]core.NodeID, 0, len(region))
		for _, id := range region {
			if !taken[id] {
				pool = append(pool, id)
			}
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		if want > len(pool) {
			want = len(pool)
		}
		if want == 0 {
			continue
		}

		nodes := pool[:want:want]
		for _, id := range nodes {
			taken[id] = true
		}
		total += want
		out = append(out, Pick{Actor: actor, Level: lvl, Nodes: nodes, Delay: cfg.spreadDelay(lvl)})
	}
	return out
}

type ignition struct {
	node  core.NodeID
	actor core.ActorID
	delay float64
	start float64 // Seconds after the wave began igniting
}

// buildPlan staggers ignitions: fire k starts after the sum of the spread
// delays of the fires before it.
func buildPlan(a Assignment) []ignition {
	var plan []ignition
	start := 0.0
	for _, p := range a {
		for _, id := range p.Nodes {
			plan = append(plan, ignition{node: id, actor: p.Actor, delay: p.Delay, start: start})
			start += p.Delay
		}
	}
	return plan
}
