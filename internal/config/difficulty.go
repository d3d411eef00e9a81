package config

import (
	"fmt"
	"math"
)

// Presets lists the named difficulty levels in increasing order.
func Presets() []Preset {
	return []Preset{PresetGentle, PresetStandard, PresetIntense, PresetFixed}
}

// ParsePreset converts a flag value into a Preset. Empty means standard.
func ParsePreset(s string) (Preset, error) {
	if s == "" {
		return PresetStandard, nil
	}
	for _, p := range Presets() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: %w: unknown preset %q", ErrInvalidValue, s)
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Experience, preset Preset) {
	switch preset {
	case PresetGentle:
		cfg.Fire.RekindleRate *= 0.5
		cfg.Skill.SpreadDelay = cfg.Skill.SpreadDelay.scale(1.5)
		cfg.Skill.IntermediateEfficiency *= 0.75
		cfg.Skill.AdvancedEfficiency *= 0.75
		cfg.Waves.InactivityTimeout *= 1.5
	case PresetIntense:
		cfg.Fire.RekindleRate *= 1.6
		cfg.Skill.SpreadDelay = cfg.Skill.SpreadDelay.scale(0.6)
		cfg.Skill.FireCount.Advanced++
		for i := range cfg.Waves.MaxFireCount {
			if i > 0 && cfg.Waves.MaxFireCount[i] > 0 {
				cfg.Waves.MaxFireCount[i] += 2
			}
		}
	case PresetFixed:
		// Every tier plays like a beginner, so difficulty never adapts.
		cfg.Skill.FireCount = SkillCounts{
			Beginner:     cfg.Skill.FireCount.Beginner,
			Intermediate: cfg.Skill.FireCount.Beginner,
			Advanced:     cfg.Skill.FireCount.Beginner,
		}
		cfg.Skill.SpreadDelay = SkillTable{
			Beginner:     cfg.Skill.SpreadDelay.Beginner,
			Intermediate: cfg.Skill.SpreadDelay.Beginner,
			Advanced:     cfg.Skill.SpreadDelay.Beginner,
		}
	}
}

// At returns the value for a tier index (0 beginner, 1 intermediate, 2 advanced).
func (t SkillTable) At(tier int) float64 {
	switch tier {
	case 1:
		return t.Intermediate
	case 2:
		return t.Advanced
	default:
		return t.Beginner
	}
}

// At returns the count for a tier index.
func (c SkillCounts) At(tier int) int {
	switch tier {
	case 1:
		return c.Intermediate
	case 2:
		return c.Advanced
	default:
		return c.Beginner
	}
}

func (t SkillTable) scale(f float64) SkillTable {
	r := func(v float64) float64 { return math.Round(v*f*100) / 100 }
	return SkillTable{Beginner: r(t.Beginner), Intermediate: r(t.Intermediate), Advanced: r(t.Advanced)}
}
