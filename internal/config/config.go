// Package config provides YAML-based experience and layout configuration
// loading, validation and difficulty presets for the installation.
package config

// Experience contains every tunable of an experience run.
type Experience struct {
	Fire      FireConfig      `yaml:"fire"`
	Spread    SpreadConfig    `yaml:"spread"`
	Skill     SkillConfig     `yaml:"skill"`
	Waves     WavesConfig     `yaml:"waves"`
	Actors    []ActorConfig   `yaml:"actors"`
	Input     InputConfig     `yaml:"input"`
	Autostart AutostartConfig `yaml:"autostart"`
}

// FireConfig defines the intensity dynamics of a fire node.
type FireConfig struct {
	MaxIntensity         float64 `yaml:"max_intensity"`
	RekindleRate         float64 `yaml:"rekindle_rate"`         // Intensity per second without input
	ExtinguishMultiplier float64 `yaml:"extinguish_multiplier"` // Scale applied to spray amounts
	WeakenFraction       float64 `yaml:"weaken_fraction"`       // 0 disables the weakened cue
}

// SpreadConfig defines how fires propagate between neighbours.
type SpreadConfig struct {
	DefaultDelay float64 `yaml:"default_delay"` // Seconds, for edges without spread_delay
	Scope        string  `yaml:"scope"`         // "shared" or "per_cascade"
	DelayMode    string  `yaml:"delay_mode"`    // "skill", "edge" or "scaled"
}

// SkillConfig defines classification and the per-tier difficulty tables.
type SkillConfig struct {
	IntermediateEfficiency float64     `yaml:"intermediate_efficiency"`
	AdvancedEfficiency     float64     `yaml:"advanced_efficiency"`
	MinParticipation       float64     `yaml:"min_participation"`
	FireCount              SkillCounts `yaml:"fire_count"`
	SpreadDelay            SkillTable  `yaml:"spread_delay"`
}

// SkillTable maps each tier to a float value.
type SkillTable struct {
	Beginner     float64 `yaml:"beginner"`
	Intermediate float64 `yaml:"intermediate"`
	Advanced     float64 `yaml:"advanced"`
}

// SkillCounts maps each tier to a count.
type SkillCounts struct {
	Beginner     int `yaml:"beginner"`
	Intermediate int `yaml:"intermediate"`
	Advanced     int `yaml:"advanced"`
}

// WavesConfig defines wave pacing.
type WavesConfig struct {
	Count             int     `yaml:"count"`
	Interval          float64 `yaml:"interval"`           // Seconds between waves
	MaxFireCount      []int   `yaml:"max_fire_count"`     // Per-wave budget, last entry repeats
	InactivityTimeout float64 `yaml:"inactivity_timeout"` // Seconds, 0 disables
	Seed              int64   `yaml:"seed"`               // Fire selection seed
}

// ActorConfig declares one participant and the layout region they defend.
type ActorConfig struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
}

// InputConfig defines the input boundary.
type InputConfig struct {
	SprayAmount   float64 `yaml:"spray_amount"`   // Amount of one spray sample
	QueueCapacity int     `yaml:"queue_capacity"` // 0 means unbounded
}

// AutostartConfig defines automatic experience start from control movement.
type AutostartConfig struct {
	Enabled           bool    `yaml:"enabled"`
	MovementThreshold float64 `yaml:"movement_threshold"`
	Cooldown          float64 `yaml:"cooldown"`
}

// Layout describes the physical fire points and their neighbour relation.
type Layout struct {
	Name     string     `yaml:"name"`
	SeedNode string     `yaml:"seed_node"`
	Nodes    []NodeSpec `yaml:"nodes"`
	Edges    []EdgeSpec `yaml:"edges"`
}

// NodeSpec declares one fire point.
type NodeSpec struct {
	ID           string  `yaml:"id"`
	Region       string  `yaml:"region"`
	Group        string  `yaml:"group"` // "large" or "small", informational
	Pos          Point   `yaml:"pos"`
	MaxIntensity float64 `yaml:"max_intensity,omitempty"` // Overrides fire.max_intensity
	Leader       bool    `yaml:"leader,omitempty"`        // Relights its neighbours when it weakens
}

// Point is a position on the drill screen.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// EdgeSpec connects two fire points.
type EdgeSpec struct {
	From        string   `yaml:"from"`
	To          string   `yaml:"to"`
	SpreadDelay *float64 `yaml:"spread_delay,omitempty"` // Unset uses spread.default_delay
	Directed    bool     `yaml:"directed,omitempty"`
}

// Preset represents a named difficulty level.
type Preset string

const (
	PresetGentle   Preset = "gentle"
	PresetStandard Preset = "standard"
	PresetIntense  Preset = "intense"
	PresetFixed    Preset = "fixed"
)
