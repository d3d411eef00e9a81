// Package skill tracks per-actor extinguishing performance across waves and
// classifies each actor into a skill tier.
package skill

import (
	"sort"

	"github.com/vovakirdan/firewave/internal/core"
)

// Level is a skill tier.
type Level int

const (
	Beginner Level = iota
	Intermediate
	Advanced
)

// LevelCount is the number of tiers, for lookup tables indexed by Level.
const LevelCount = 3

// String returns the tier name.
func (l Level) String() string {
	switch l {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// efficiencyEpsilon guards the division for zero-length waves.
const efficiencyEpsilon = 1e-6

// Thresholds configure classification.
type Thresholds struct {
	Intermediate     float64 // Efficiency needed for Intermediate
	Advanced         float64 // Efficiency needed for Advanced
	MinParticipation float64 // Extinguished amount needed to stay active
}

// DefaultThresholds returns the installation defaults, in intensity per second.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Intermediate:     15,
		Advanced:         30,
		MinParticipation: 10,
	}
}

// Classify maps an efficiency onto a tier. It is monotonic in efficiency.
func (t Thresholds) Classify(efficiency float64) Level {
	switch {
	case efficiency >= t.Advanced:
		return Advanced
	case efficiency >= t.Intermediate:
		return Intermediate
	default:
		return Beginner
	}
}

// Record is the performance ledger of one actor.
type Record struct {
	Actor        core.ActorID
	Name         string
	Level        Level
	WaveStart    float64
	WaveEnd      float64
	WaveTime     float64 // Duration of the last finished wave
	TotalTime    float64 // Sum of finished wave durations
	Extinguished float64 // Intensity removed during the current wave
	Total        float64 // Intensity removed over the run
	FiresCleared int     // Fires put out over the run
	Efficiency   float64 // Of the last finished wave
	Waves        int
	Active       bool
}

// Tracker owns the actor records. It is driven from the simulation tick and
// is not safe for concurrent use.
type Tracker struct {
	cfg     Thresholds
	records map[core.ActorID]*Record
	order   []core.ActorID
	inWave  bool
}

// NewTracker creates a tracker without actors.
func NewTracker(cfg Thresholds) *Tracker {
	return &Tracker{
		cfg:     cfg,
		records: make(map[core.ActorID]*Record),
	}
}

// Thresholds returns the classification config.
func (t *Tracker) Thresholds() Thresholds {
	return t.cfg
}

// Register adds an actor. Registering an existing actor only updates its name.
func (t *Tracker) Register(actor core.ActorID, name string) {
	if r, ok := t.records[actor]; ok {
		r.Name = name
		return
	}
	t.records[actor] = &Record{Actor: actor, Name: name, Active: actor != core.ActorUnknown}
	t.order = append(t.order, actor)
}

// resolve maps actors that were never registered onto the unknown record.
func (t *Tracker) resolve(actor core.ActorID) *Record {
	if r, ok := t.records[actor]; ok {
		return r
	}
	if _, ok := t.records[core.ActorUnknown]; !ok {
		t.Register(core.ActorUnknown, "unknown")
	}
	return t.records[core.ActorUnknown]
}

// StartWave resets the per-wave counters of every actor.
func (t *Tracker) StartWave(now float64) {
	t.inWave = true
	for _, id := range t.order {
		r := t.records[id]
		r.WaveStart = now
		r.Extinguished = 0
	}
}

// RecordExtinguish credits intensity removed by actor. It does not change the
// actor's tier until EndWave.
func (t *Tracker) RecordExtinguish(actor core.ActorID, amount float64) {
	if !(amount > 0) || !core.Finite(amount) {
		return
	}
	r := t.resolve(actor)
	r.Extinguished += amount
	r.Total += amount
}

// RecordFireCleared credits actor with putting out one fire.
func (t *Tracker) RecordFireCleared(actor core.ActorID) {
	t.resolve(actor).FiresCleared++
}

// EndWave computes efficiency and reclassifies every actor. Actors below the
// participation threshold are flagged inactive.
func (t *Tracker) EndWave(now float64) {
	if !t.inWave {
		return
	}
	t.inWave = false
	for _, id := range t.order {
		r := t.records[id]
		r.WaveEnd = now
		r.WaveTime = now - r.WaveStart
		if r.WaveTime < 0 {
			r.WaveTime = 0
		}
		r.TotalTime += r.WaveTime
		r.Efficiency = r.Extinguished / max(r.WaveTime, efficiencyEpsilon)
		r.Level = t.cfg.Classify(r.Efficiency)
		r.Active = id != core.ActorUnknown && r.Extinguished >= t.cfg.MinParticipation
		r.Waves++
	}
}

// InWave reports whether StartWave was called without a matching EndWave.
func (t *Tracker) InWave() bool {
	return t.inWave
}

// ActivePlayers returns registered actors that are not flagged inactive, in
// registration order.
func (t *Tracker) ActivePlayers() []core.ActorID {
	var out []core.ActorID
	for _, id := range t.order {
		if t.records[id].Active {
			out = append(out, id)
		}
	}
	return out
}

// Ranked returns the active actors sorted by descending tier, ties by id.
func (t *Tracker) Ranked() []core.ActorID {
	out := t.ActivePlayers()
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := t.records[out[i]].Level, t.records[out[j]].Level
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

// Level returns the tier of actor, Beginner for unknown actors.
func (t *Tracker) Level(actor core.ActorID) Level {
	if r, ok := t.records[actor]; ok {
		return r.Level
	}
	return Beginner
}

// Record returns a copy of one actor's record.
func (t *Tracker) Record(actor core.ActorID) (Record, bool) {
	r, ok := t.records[actor]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Records returns copies of all records in registration order.
func (t *Tracker) Records() []Record {
	out := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.records[id])
	}
	return out
}

// Reset clears every record back to a fresh active Beginner, keeping the
// registered actors.
func (t *Tracker) Reset() {
	t.inWave = false
	for _, id := range t.order {
		r := t.records[id]
		*r = Record{Actor: id, Name: r.Name, Active: id != core.ActorUnknown}
	}
}
