package wave

import (
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/skill"
)

// DelayMode selects how an actor's spread delay meets the edge delays of the
// layout.
type DelayMode int

const (
	// DelaySkill spreads every hop with the actor's skill delay.
	DelaySkill DelayMode = iota
	// DelayEdge spreads with each edge's own delay and ignores skill.
	DelayEdge
	// DelayScaled multiplies each edge's delay by skill delay / ReferenceDelay.
	DelayScaled
)

// String returns the config name of the mode.
func (m DelayMode) String() string {
	switch m {
	case DelayEdge:
		return "edge"
	case DelayScaled:
		return "scaled"
	default:
		return "skill"
	}
}

// ParseDelayMode converts a config value into a DelayMode.
func ParseDelayMode(s string) (DelayMode, error) {
	switch s {
	case "", "skill":
		return DelaySkill, nil
	case "edge":
		return DelayEdge, nil
	case "scaled":
		return DelayScaled, nil
	default:
		return DelaySkill, fmt.Errorf("wave: unknown delay mode %q", s)
	}
}

// Config drives wave selection and pacing.
type Config struct {
	Waves             int     // Waves per experience, including the seed wave
	WaveInterval      float64 // Pause between waves, seconds
	InactivityTimeout float64 // Seconds without input before the run stops; 0 disables
	MaxFireCount      []int   // Per-wave fire budget; the last entry repeats; 0 means no cap

	FireCount   [skill.LevelCount]int     // Fires assigned to an actor by tier
	SpreadDelay [skill.LevelCount]float64 // Spread delay of an actor's fires by tier

	DelayMode      DelayMode
	ReferenceDelay float64 // Edge delay a skill delay is measured against in DelayScaled

	SeedNode core.NodeID                  // Fire of wave 0
	Regions  map[core.ActorID][]core.NodeID // Candidate fires per actor; missing means every node
	Seed     int64                        // Shuffle seed
}

// DefaultConfig returns the pacing of the installation.
func DefaultConfig() Config {
	return Config{
		Waves:             3,
		WaveInterval:      5,
		InactivityTimeout: 60,
		MaxFireCount:      []int{1, 4, 6},
		FireCount:         [skill.LevelCount]int{1, 2, 3},
		SpreadDelay:       [skill.LevelCount]float64{1.5, 1.0, 0.5},
		DelayMode:         DelayScaled,
		ReferenceDelay:    1,
		Seed:              1,
	}
}

// hopScale returns the factor applied to edge delays for a skill delay.
// Without a reference delay the edges are used as configured.
func (c Config) hopScale(delay float64) float64 {
	if c.ReferenceDelay <= 0 {
		return 1
	}
	return delay / c.ReferenceDelay
}

func (c Config) budget(wave int) int {
	if len(c.MaxFireCount) == 0 {
		return 0
	}
	if wave >= len(c.MaxFireCount) {
		wave = len(c.MaxFireCount) - 1
	}
	return c.MaxFireCount[wave]
}

func (c Config) fireCount(l skill.Level) int {
	if l < 0 || int(l) >= len(c.FireCount) {
		return c.FireCount[0]
	}
	return c.FireCount[l]
}

func (c Config) spreadDelay(l skill.Level) float64 {
	if l < 0 || int(l) >= len(c.SpreadDelay) {
		return c.SpreadDelay[0]
	}
	return c.SpreadDelay[l]
}
