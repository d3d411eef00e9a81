package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/wave"
)

var (
	ErrNoNodes       = errors.New("layout has no fire nodes")
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownSeed   = errors.New("unknown seed node")
	ErrInvalidValue  = errors.New("invalid value")
	ErrNoActors      = errors.New("no actors configured")
	ErrEmptyRegion   = errors.New("actor region has no nodes")
)

// Validate checks an experience config for values the simulation cannot run
// with.
func (e Experience) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"fire.max_intensity", e.Fire.MaxIntensity > 0},
		{"fire.rekindle_rate", e.Fire.RekindleRate >= 0},
		{"fire.extinguish_multiplier", e.Fire.ExtinguishMultiplier > 0},
		{"fire.weaken_fraction", e.Fire.WeakenFraction >= 0 && e.Fire.WeakenFraction <= 1},
		{"spread.default_delay", e.Spread.DefaultDelay >= 0},
		{"skill.advanced_efficiency", e.Skill.AdvancedEfficiency >= e.Skill.IntermediateEfficiency},
		{"skill.min_participation", e.Skill.MinParticipation >= 0},
		{"waves.count", e.Waves.Count > 0},
		{"waves.interval", e.Waves.Interval >= 0},
		{"waves.inactivity_timeout", e.Waves.InactivityTimeout >= 0},
		{"input.spray_amount", e.Input.SprayAmount > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("config: %w: %s", ErrInvalidValue, c.name)
		}
	}
	for tier := 0; tier < 3; tier++ {
		if e.Skill.FireCount.At(tier) < 0 || e.Skill.SpreadDelay.At(tier) < 0 {
			return fmt.Errorf("config: %w: skill tables must not be negative", ErrInvalidValue)
		}
	}
	for _, n := range e.Waves.MaxFireCount {
		if n < 0 {
			return fmt.Errorf("config: %w: waves.max_fire_count", ErrInvalidValue)
		}
	}
	if _, err := e.scope(); err != nil {
		return fmt.Errorf("config: %w: spread.scope %q", ErrInvalidValue, e.Spread.Scope)
	}
	if _, err := wave.ParseDelayMode(e.Spread.DelayMode); err != nil {
		return fmt.Errorf("config: %w: spread.delay_mode %q", ErrInvalidValue, e.Spread.DelayMode)
	}
	if len(e.Actors) == 0 {
		return fmt.Errorf("config: %w", ErrNoActors)
	}
	seen := make(map[int]bool, len(e.Actors))
	for _, a := range e.Actors {
		if a.ID < 0 || seen[a.ID] {
			return fmt.Errorf("config: %w: actor id %d", ErrInvalidValue, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Validate checks the layout for structural errors.
func (l Layout) Validate() error {
	if len(l.Nodes) == 0 {
		return fmt.Errorf("config: %w", ErrNoNodes)
	}
	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return fmt.Errorf("config: %w: empty node id", ErrInvalidValue)
		}
		if ids[n.ID] {
			return fmt.Errorf("config: %w: %s", ErrDuplicateNode, n.ID)
		}
		if n.MaxIntensity < 0 {
			return fmt.Errorf("config: %w: max_intensity of %s", ErrInvalidValue, n.ID)
		}
		ids[n.ID] = true
	}
	if !ids[l.SeedNode] {
		return fmt.Errorf("config: %w: %q", ErrUnknownSeed, l.SeedNode)
	}
	for _, e := range l.Edges {
		for _, end := range []string{e.From, e.To} {
			if !ids[end] {
				return fmt.Errorf("config: edge %s-%s: %w: %q", e.From, e.To, ErrUnknownNode, end)
			}
		}
		if e.SpreadDelay != nil && *e.SpreadDelay < 0 {
			return fmt.Errorf("config: edge %s-%s: %w: spread_delay", e.From, e.To, ErrInvalidValue)
		}
	}
	return nil
}

// ValidateFor checks that every actor's region exists in the layout.
func (e Experience) ValidateFor(l Layout) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := l.Validate(); err != nil {
		return err
	}
	for _, a := range e.Actors {
		if a.Region == "" {
			continue
		}
		if len(l.Region(a.Region)) == 0 {
			return fmt.Errorf("config: %s: %w: %q", core.ActorID(a.ID), ErrEmptyRegion, a.Region)
		}
	}
	return nil
}

// Region returns the ids of nodes in a region, in layout order.
func (l Layout) Region(name string) []core.NodeID {
	var out []core.NodeID
	for _, n := range l.Nodes {
		if n.Region == name {
			out = append(out, core.NodeID(n.ID))
		}
	}
	return out
}

// Node returns the spec of a node.
func (l Layout) Node(id core.NodeID) (NodeSpec, bool) {
	for _, n := range l.Nodes {
		if n.ID == string(id) {
			return n, true
		}
	}
	return NodeSpec{}, false
}
