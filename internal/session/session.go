// Package session wires the fire graph, skill tracker, wave scheduler and
// input queue into one deterministic tick loop.
package session

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/fire"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/skill"
	"github.com/vovakirdan/firewave/internal/wave"
)

// IntensityHook receives the normalized intensity of a node after each tick.
type IntensityHook func(node core.NodeID, normalized float64)

// Options configures a Session.
type Options struct {
	Experience config.Experience
	Layout     config.Layout
	Preset     config.Preset
	Logger     *log.Logger
	Saver      RunSaver         // Optional
	Clock      func() time.Time // Wall clock for run records, defaults to time.Now
}

// Session owns the event bus, input queue and fire graph of one
// installation. Tick, StartExperience and StopExperience must be called from
// a single goroutine; Submit and ObserveControl are safe from any goroutine.
type Session struct {
	exp    config.Experience
	layout config.Layout
	logger *log.Logger

	bus       *events.Bus
	queue     *input.Queue
	graph     *fire.Graph
	tracker   *skill.Tracker
	scheduler *wave.Scheduler

	starterMu      sync.Mutex
	starter        *input.Starter
	startRequested atomic.Bool

	hook     IntensityHook
	outNodes []core.NodeID
	ticks    uint64

	recorder *recorder
}

// New validates the configuration and builds a session.
func New(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if err := opts.Experience.ValidateFor(opts.Layout); err != nil {
		return nil, err
	}
	graph, err := opts.Experience.BuildGraph(opts.Layout)
	if err != nil {
		return nil, err
	}

	tracker := skill.NewTracker(opts.Experience.Thresholds())
	for _, a := range opts.Experience.Actors {
		tracker.Register(core.ActorID(a.ID), a.Name)
	}

	waves, err := opts.Experience.WaveConfig(opts.Layout)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus()
	sched := wave.NewScheduler(waves, graph, tracker, bus, opts.Logger)
	if err := sched.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		exp:       opts.Experience,
		layout:    opts.Layout,
		logger:    opts.Logger,
		bus:       bus,
		queue:     input.NewQueue(opts.Experience.Input.QueueCapacity),
		graph:     graph,
		tracker:   tracker,
		scheduler: sched,
		starter:   input.NewStarter(opts.Experience.StarterConfig()),
	}
	s.recorder = newRecorder(s, opts.Layout.Name, string(opts.Preset), opts.Saver, opts.Clock)
	bus.Subscribe(s.onNodeOut, events.KindFireExtinguished)
	return s, nil
}

// Bus returns the event bus. Subscribers run on the tick goroutine.
func (s *Session) Bus() *events.Bus { return s.bus }

// Graph returns the fire graph.
func (s *Session) Graph() *fire.Graph { return s.graph }

// Tracker returns the skill tracker.
func (s *Session) Tracker() *skill.Tracker { return s.tracker }

// Scheduler returns the wave scheduler.
func (s *Session) Scheduler() *wave.Scheduler { return s.scheduler }

// Queue returns the input queue.
func (s *Session) Queue() *input.Queue { return s.queue }

// Experience returns the configuration the session was built with.
func (s *Session) Experience() config.Experience { return s.exp }

// Layout returns the fire layout.
func (s *Session) Layout() config.Layout { return s.layout }

// Ticks returns the number of ticks run.
func (s *Session) Ticks() uint64 { return s.ticks }

// SetIntensityHook installs the visual callback. Nil removes it.
func (s *Session) SetIntensityHook(h IntensityHook) {
	s.hook = h
}

// Submit enqueues an extinguish contribution.
func (s *Session) Submit(c input.Contribution) {
	s.queue.Push(c)
}

// Spray enqueues one spray sample of the configured amount.
func (s *Session) Spray(node core.NodeID, actor core.ActorID) {
	s.queue.Push(input.Contribution{Node: node, Actor: actor, Amount: s.exp.Input.SprayAmount})
}

// ObserveControl feeds a raw control reading to the automatic starter. A
// qualifying movement requests a start on the next tick.
func (s *Session) ObserveControl(control string, value float64) {
	s.starterMu.Lock()
	trigger := s.starter.Observe(control, value)
	s.starterMu.Unlock()
	if trigger {
		s.startRequested.Store(true)
	}
}

// StartExperience starts a run and dispatches the resulting events.
func (s *Session) StartExperience() error {
	err := s.scheduler.StartExperience()
	s.bus.Dispatch()
	return err
}

// StopExperience aborts the current run and dispatches the resulting events.
func (s *Session) StopExperience(reason events.StopReason) {
	s.scheduler.StopExperience(reason)
	s.bus.Dispatch()
}

// Tick advances the simulation by dt seconds:
// input, node ticks and cascades, dispatch, scheduler, dispatch, visuals.
func (s *Session) Tick(dt float64) {
	if !(dt > 0) || !core.Finite(dt) {
		return
	}
	s.ticks++

	if s.startRequested.Swap(false) && !s.scheduler.State().Running() {
		if err := s.StartExperience(); err != nil {
			s.logger.Error("auto start failed", "err", err)
		}
	}

	for _, c := range s.queue.Drain() {
		s.scheduler.RegisterActivity()
		if c.Activity() {
			continue
		}
		if !s.graph.ApplyExtinguish(c.Node, c.Amount, c.Actor) {
			s.logger.Debug("extinguish ignored", "node", c.Node, "actor", c.Actor, "amount", c.Amount)
		}
	}

	s.outNodes = s.outNodes[:0]
	s.bus.Publish(s.graph.Tick(dt)...)
	s.bus.Dispatch()

	s.scheduler.Tick(dt)
	s.bus.Dispatch()

	s.starterMu.Lock()
	s.starter.Advance(dt)
	s.starterMu.Unlock()

	if s.hook != nil {
		for _, n := range s.graph.Nodes() {
			if n.Burning() {
				s.hook(n.ID(), n.Normalized())
			}
		}
		for _, id := range s.outNodes {
			s.hook(id, 0)
		}
	}
}

// Close waits for pending run saves.
func (s *Session) Close() {
	s.recorder.wait()
}

func (s *Session) onNodeOut(e events.Event) {
	s.outNodes = append(s.outNodes, e.(events.FireExtinguished).Node)
}

func (s *Session) beginCooldown() {
	s.starterMu.Lock()
	s.starter.BeginCooldown()
	s.starterMu.Unlock()
}
