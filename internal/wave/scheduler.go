// Package wave orchestrates an experience run: it selects fires for each wave
// from the actors' skill, ignites and spreads them, waits for them to be put
// out and paces the waves.
package wave

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/fire"
	"github.com/vovakirdan/firewave/internal/skill"
)

var (
	ErrNoFireNodes = errors.New("no fire nodes configured")
	ErrUnknownSeed = errors.New("seed node is not in the graph")
	ErrNoWaves     = errors.New("wave count must be positive")
)

// State is the scheduler state.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateIgniting
	StateInProgress
	StateCompleting
	StateFinished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateIgniting:
		return "igniting"
	case StateInProgress:
		return "in_progress"
	case StateCompleting:
		return "completing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Running reports whether a run is underway.
func (s State) Running() bool {
	return s != StateIdle && s != StateFinished
}

// Scheduler is the wave state machine. All methods must be called from the
// simulation tick context.
type Scheduler struct {
	cfg     Config
	graph   *fire.Graph
	tracker *skill.Tracker
	bus     *events.Bus
	logger  *log.Logger
	rng     *rand.Rand

	timers   Timers
	watchdog Watchdog

	state     State
	wave      int
	now       float64
	waveStart float64

	assignment Assignment
	plan       []ignition
	planPos    int
	planClock  float64
	completed  bool

	remaining map[core.NodeID]core.ActorID
	cascades  map[events.CascadeID]core.ActorID
	subs      []events.Subscription
}

// NewScheduler wires a scheduler to its collaborators. A nil logger discards
// output.
func NewScheduler(cfg Config, graph *fire.Graph, tracker *skill.Tracker, bus *events.Bus, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scheduler{
		cfg:       cfg,
		graph:     graph,
		tracker:   tracker,
		bus:       bus,
		logger:    logger,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		watchdog:  Watchdog{Timeout: cfg.InactivityTimeout},
		remaining: make(map[core.NodeID]core.ActorID),
		cascades:  make(map[events.CascadeID]core.ActorID),
	}
}

// Validate checks the configuration against the graph.
func (s *Scheduler) Validate() error {
	if s.graph.Len() == 0 {
		return ErrNoFireNodes
	}
	if s.cfg.Waves <= 0 {
		return ErrNoWaves
	}
	if _, ok := s.graph.Node(s.cfg.SeedNode); !ok {
		return fmt.Errorf("wave: %w: %q", ErrUnknownSeed, s.cfg.SeedNode)
	}
	for actor, region := range s.cfg.Regions {
		for _, id := range region {
			if _, ok := s.graph.Node(id); !ok {
				return fmt.Errorf("wave: region of %s: %w: %q", actor, fire.ErrUnknownNode, id)
			}
		}
	}
	return nil
}

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// Wave returns the index of the current (or next) wave.
func (s *Scheduler) Wave() int { return s.wave }

// Waves returns the configured number of waves.
func (s *Scheduler) Waves() int { return s.cfg.Waves }

// Now returns the simulation clock in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// Assignment returns the fires selected for the current wave.
func (s *Scheduler) Assignment() Assignment { return s.assignment }

// Remaining returns how many fires of the current wave are still burning.
func (s *Scheduler) Remaining() int { return len(s.remaining) }

// IdleFor returns the seconds left before the inactivity watchdog fires.
func (s *Scheduler) IdleFor() float64 { return s.watchdog.Remaining() }

// StartExperience begins a run from Idle or Finished. It is a no-op while a
// run is underway. Configuration errors leave the scheduler Idle.
func (s *Scheduler) StartExperience() error {
	if s.state.Running() {
		return nil
	}
	if err := s.Validate(); err != nil {
		s.logger.Error("cannot start experience", "err", err)
		return err
	}
	s.graph.Reset()
	s.tracker.Reset()
	s.timers.CancelAll()
	s.watchdog.Reset()
	s.wave = 0
	s.state = StateSelecting
	s.bus.Publish(events.ExperienceStarted{})
	s.logger.Info("experience started", "waves", s.cfg.Waves, "nodes", s.graph.Len())
	s.step()
	return nil
}

// RegisterActivity resets the inactivity watchdog.
func (s *Scheduler) RegisterActivity() {
	s.watchdog.Reset()
}

// StopExperience aborts the run from any state: timers and cascades are
// cancelled, every fire is put out without events and the scheduler returns
// to Idle. ExperienceStopped is published unless it was already Idle.
func (s *Scheduler) StopExperience(reason events.StopReason) {
	wasIdle := s.state == StateIdle
	s.timers.CancelAll()
	s.graph.ExtinguishAll()
	s.graph.ResetSpread()
	s.endWaveTracking()
	s.plan = nil
	s.planPos = 0
	s.state = StateIdle
	if wasIdle {
		return
	}
	s.bus.Publish(events.ExperienceStopped{Reason: reason})
	s.logger.Info("experience stopped", "reason", reason, "wave", s.wave)
}

// Tick advances the scheduler by dt seconds. Events produced by the graph for
// this tick must already have been dispatched.
func (s *Scheduler) Tick(dt float64) {
	if !(dt > 0) || !core.Finite(dt) {
		return
	}
	s.now += dt
	if !s.state.Running() {
		return
	}
	if s.watchdog.Advance(dt) {
		s.logger.Warn("no activity, stopping", "timeout", s.cfg.InactivityTimeout)
		s.StopExperience(events.StopReasonInactivity)
		return
	}
	if s.state == StateIgniting {
		s.planClock += dt
	}
	s.timers.Advance(dt)
	s.step()
}

// step runs state transitions that need no further time to pass.
func (s *Scheduler) step() {
	for {
		switch s.state {
		case StateSelecting:
			s.selectWave()
		case StateIgniting:
			s.ignitePlan()
			if s.planPos < len(s.plan) {
				return
			}
			s.state = StateInProgress
		case StateInProgress:
			if !s.waveDone() {
				return
			}
			s.state = StateCompleting
			s.completed = false
		case StateCompleting:
			if s.completed {
				return
			}
			s.completeWave()
		default:
			return
		}
	}
}

func (s *Scheduler) selectWave() {
	s.graph.ResetSpread()
	s.tracker.StartWave(s.now)
	s.waveStart = s.now

	ranked := s.tracker.Ranked()
	var a Assignment
	if s.wave > 0 && len(ranked) > 0 {
		a = selectFires(s.cfg, s.wave, ranked, s.tracker.Level, s.graph.IDs(), s.rng)
	}
	if a.NodeCount() == 0 {
		a = seedAssignment(s.cfg, ranked, s.tracker.Level)
	}
	s.assignment = a
	s.plan = buildPlan(a)
	s.planPos = 0
	s.planClock = 0
	s.subscribe()

	s.bus.Publish(events.WaveStarted{Index: s.wave, Nodes: a.NodeCount()})
	s.logger.Info("wave started", "wave", s.wave, "fires", a.NodeCount(), "actors", len(a))
	s.state = StateIgniting
}

func (s *Scheduler) ignitePlan() {
	for s.planPos < len(s.plan) {
		ig := s.plan[s.planPos]
		if ig.start > s.planClock+1e-9 {
			return
		}
		s.planPos++
		if s.graph.Ignite(ig.node) {
			s.bus.Publish(events.FireIgnited{Node: ig.node})
		}
		if n, ok := s.graph.Node(ig.node); ok && n.Burning() {
			if _, tracked := s.remaining[ig.node]; !tracked {
				s.remaining[ig.node] = ig.actor
			}
		}
		if id := s.spread(ig); id != 0 {
			s.cascades[id] = ig.actor
		}
	}
}

func (s *Scheduler) spread(ig ignition) events.CascadeID {
	switch s.cfg.DelayMode {
	case DelayEdge:
		return s.graph.SpreadFrom(ig.node, fire.UseEdgeDelay)
	case DelayScaled:
		return s.graph.SpreadScaled(ig.node, s.cfg.hopScale(ig.delay))
	default:
		return s.graph.SpreadFrom(ig.node, ig.delay)
	}
}

func (s *Scheduler) waveDone() bool {
	if s.planPos < len(s.plan) || len(s.remaining) > 0 {
		return false
	}
	for id := range s.cascades {
		if s.graph.CascadeActive(id) {
			return false
		}
	}
	return true
}

func (s *Scheduler) completeWave() {
	s.completed = true
	duration := s.now - s.waveStart
	s.tracker.EndWave(s.now)
	s.endWaveTracking()
	s.bus.Publish(events.WaveCompleted{Index: s.wave, Duration: duration})
	s.logger.Info("wave completed", "wave", s.wave, "duration", duration)

	s.wave++
	if s.wave >= s.cfg.Waves {
		s.state = StateFinished
		s.bus.Publish(events.ExperienceFinished{Waves: s.wave})
		s.logger.Info("experience finished", "waves", s.wave)
		return
	}
	if s.cfg.WaveInterval <= 0 {
		s.state = StateSelecting
		return
	}
	s.timers.After(s.cfg.WaveInterval, func() {
		if s.state == StateCompleting {
			s.state = StateSelecting
		}
	})
}

// subscribe installs the handlers of the current wave.
func (s *Scheduler) subscribe() {
	s.subs = append(s.subs,
		s.bus.Subscribe(s.onIgnited, events.KindFireIgnited),
		s.bus.Subscribe(s.onDamaged, events.KindFireDamaged),
		s.bus.Subscribe(s.onExtinguished, events.KindFireExtinguished),
	)
}

// endWaveTracking removes the wave handlers and forgets the wave's fires.
func (s *Scheduler) endWaveTracking() {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	s.subs = s.subs[:0]
	clear(s.remaining)
	clear(s.cascades)
}

func (s *Scheduler) onIgnited(e events.Event) {
	ev := e.(events.FireIgnited)
	if actor, ok := s.cascades[ev.Cascade]; ok {
		s.remaining[ev.Node] = actor
	}
}

func (s *Scheduler) onDamaged(e events.Event) {
	ev := e.(events.FireDamaged)
	s.tracker.RecordExtinguish(ev.Actor, ev.Amount)
}

func (s *Scheduler) onExtinguished(e events.Event) {
	ev := e.(events.FireExtinguished)
	s.tracker.RecordFireCleared(ev.Actor)
	delete(s.remaining, ev.Node)
}
