package config

import (
	_ "embed"
)

//go:embed defaults/experience.yaml
var defaultExperienceYAML []byte

//go:embed defaults/layout.yaml
var defaultLayoutYAML []byte

// DefaultExperience returns the default experience configuration.
func DefaultExperience() Experience {
	return Experience{
		Fire: FireConfig{
			MaxIntensity:         100,
			RekindleRate:         5,
			ExtinguishMultiplier: 1,
			WeakenFraction:       0.5,
		},
		Spread: SpreadConfig{
			DefaultDelay: 1,
			Scope:        "shared",
			DelayMode:    "scaled",
		},
		Skill: SkillConfig{
			IntermediateEfficiency: 15,
			AdvancedEfficiency:     30,
			MinParticipation:       10,
			FireCount:              SkillCounts{Beginner: 1, Intermediate: 2, Advanced: 3},
			SpreadDelay:            SkillTable{Beginner: 1.5, Intermediate: 1.0, Advanced: 0.5},
		},
		Waves: WavesConfig{
			Count:             3,
			Interval:          5,
			MaxFireCount:      []int{1, 4, 6},
			InactivityTimeout: 60,
			Seed:              1,
		},
		Actors: []ActorConfig{
			{ID: 1, Name: "Player 1", Region: "left"},
			{ID: 2, Name: "Player 2", Region: "right"},
		},
		Input: InputConfig{
			SprayAmount:   40,
			QueueCapacity: 4096,
		},
		Autostart: AutostartConfig{
			Enabled:           true,
			MovementThreshold: 50,
			Cooldown:          5,
		},
	}
}

// DefaultLayout returns the installation layout: one large fire in the middle
// and four small fires on each side.
func DefaultLayout() Layout {
	delay := func(v float64) *float64 { return &v }
	return Layout{
		Name:     "installation",
		SeedNode: "center",
		Nodes: []NodeSpec{
			{ID: "center", Region: "center", Group: "large", Pos: Point{X: 30, Y: 8}, MaxIntensity: 150, Leader: true},
			{ID: "left-1", Region: "left", Group: "small", Pos: Point{X: 22, Y: 5}},
			{ID: "left-2", Region: "left", Group: "small", Pos: Point{X: 16, Y: 9}},
			{ID: "left-3", Region: "left", Group: "small", Pos: Point{X: 10, Y: 5}},
			{ID: "left-4", Region: "left", Group: "small", Pos: Point{X: 4, Y: 9}},
			{ID: "right-1", Region: "right", Group: "small", Pos: Point{X: 38, Y: 5}},
			{ID: "right-2", Region: "right", Group: "small", Pos: Point{X: 44, Y: 9}},
			{ID: "right-3", Region: "right", Group: "small", Pos: Point{X: 50, Y: 5}},
			{ID: "right-4", Region: "right", Group: "small", Pos: Point{X: 56, Y: 9}},
		},
		Edges: []EdgeSpec{
			{From: "center", To: "left-1"},
			{From: "center", To: "right-1"},
			{From: "left-1", To: "left-2"},
			{From: "left-2", To: "left-3", SpreadDelay: delay(1.5)},
			{From: "left-3", To: "left-4", SpreadDelay: delay(2)},
			{From: "right-1", To: "right-2"},
			{From: "right-2", To: "right-3", SpreadDelay: delay(1.5)},
			{From: "right-3", To: "right-4", SpreadDelay: delay(2)},
		},
	}
}
