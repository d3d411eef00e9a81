package config

import (
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/fire"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/skill"
	"github.com/vovakirdan/firewave/internal/wave"
)

// FireParams converts the fire section.
func (e Experience) FireParams() fire.Params {
	return fire.Params{
		MaxIntensity:         e.Fire.MaxIntensity,
		RekindleRate:         e.Fire.RekindleRate,
		ExtinguishMultiplier: e.Fire.ExtinguishMultiplier,
		WeakenFraction:       e.Fire.WeakenFraction,
	}
}

func (e Experience) scope() (fire.Scope, error) {
	return fire.ParseScope(e.Spread.Scope)
}

// GraphConfig converts the spread section.
func (e Experience) GraphConfig() (fire.GraphConfig, error) {
	scope, err := e.scope()
	if err != nil {
		return fire.GraphConfig{}, fmt.Errorf("config: %w: %w", ErrInvalidValue, err)
	}
	return fire.GraphConfig{Scope: scope, DefaultDelay: e.Spread.DefaultDelay}, nil
}

// Thresholds converts the skill classification values.
func (e Experience) Thresholds() skill.Thresholds {
	return skill.Thresholds{
		Intermediate:     e.Skill.IntermediateEfficiency,
		Advanced:         e.Skill.AdvancedEfficiency,
		MinParticipation: e.Skill.MinParticipation,
	}
}

// StarterConfig converts the autostart section.
func (e Experience) StarterConfig() input.StarterConfig {
	return input.StarterConfig{
		Enabled:           e.Autostart.Enabled,
		MovementThreshold: e.Autostart.MovementThreshold,
		Cooldown:          e.Autostart.Cooldown,
	}
}

// WaveConfig combines the waves, spread and skill sections with the layout
// regions.
func (e Experience) WaveConfig(l Layout) (wave.Config, error) {
	mode, err := wave.ParseDelayMode(e.Spread.DelayMode)
	if err != nil {
		return wave.Config{}, fmt.Errorf("config: %w: %w", ErrInvalidValue, err)
	}
	cfg := wave.Config{
		Waves:             e.Waves.Count,
		WaveInterval:      e.Waves.Interval,
		InactivityTimeout: e.Waves.InactivityTimeout,
		MaxFireCount:      append([]int(nil), e.Waves.MaxFireCount...),
		DelayMode:         mode,
		ReferenceDelay:    e.Spread.DefaultDelay,
		SeedNode:          core.NodeID(l.SeedNode),
		Regions:           make(map[core.ActorID][]core.NodeID),
		Seed:              e.Waves.Seed,
	}
	for tier := 0; tier < skill.LevelCount; tier++ {
		cfg.FireCount[tier] = e.Skill.FireCount.At(tier)
		cfg.SpreadDelay[tier] = e.Skill.SpreadDelay.At(tier)
	}
	for _, a := range e.Actors {
		if a.Region != "" {
			cfg.Regions[core.ActorID(a.ID)] = l.Region(a.Region)
		}
	}
	return cfg, nil
}

// BuildGraph creates the fire graph of a layout. Nodes inherit the experience
// fire params unless they override max_intensity.
func (e Experience) BuildGraph(l Layout) (*fire.Graph, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	gc, err := e.GraphConfig()
	if err != nil {
		return nil, err
	}
	g := fire.NewGraph(gc)
	base := e.FireParams()
	for _, n := range l.Nodes {
		p := base
		if n.MaxIntensity > 0 {
			p.MaxIntensity = n.MaxIntensity
		}
		p.Leader = n.Leader
		if _, err := g.AddNode(core.NodeID(n.ID), p); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	for _, edge := range l.Edges {
		delay := -1.0
		if edge.SpreadDelay != nil {
			delay = *edge.SpreadDelay
		}
		connect := g.Connect
		if edge.Directed {
			connect = g.ConnectDirected
		}
		if err := connect(core.NodeID(edge.From), core.NodeID(edge.To), delay); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return g, nil
}
