package input

import "math"

// StarterConfig tunes automatic experience start.
type StarterConfig struct {
	Enabled           bool
	MovementThreshold float64 // Control travel that counts as someone arriving
	Cooldown          float64 // Seconds after a run before auto start re-arms
}

// DefaultStarterConfig matches the potentiometer range of the installation.
func DefaultStarterConfig() StarterConfig {
	return StarterConfig{Enabled: true, MovementThreshold: 50, Cooldown: 5}
}

// Starter watches raw control values and reports when a visitor moves a
// control far enough to start an experience.
type Starter struct {
	cfg      StarterConfig
	last     map[string]float64
	cooldown float64
}

// NewStarter creates a starter.
func NewStarter(cfg StarterConfig) *Starter {
	return &Starter{cfg: cfg, last: make(map[string]float64)}
}

// Observe records a control reading. It returns true when the control moved
// at least MovementThreshold since its previous reading and the starter is
// armed. The first reading of a control only sets its baseline.
func (s *Starter) Observe(control string, value float64) bool {
	prev, seen := s.last[control]
	s.last[control] = value
	if !s.cfg.Enabled || !seen || s.cooldown > 0 {
		return false
	}
	return math.Abs(value-prev) >= s.cfg.MovementThreshold
}

// BeginCooldown disarms the starter for the configured cooldown.
func (s *Starter) BeginCooldown() {
	s.cooldown = s.cfg.Cooldown
}

// Advance counts the cooldown down.
func (s *Starter) Advance(dt float64) {
	if s.cooldown > 0 {
		s.cooldown = math.Max(s.cooldown-dt, 0)
	}
}

// Armed reports whether a movement would start an experience.
func (s *Starter) Armed() bool {
	return s.cfg.Enabled && s.cooldown <= 0
}
