package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
)

// RunSaver is an interface for saving finished runs.
// This allows the session to save results without depending on the storage package.
type RunSaver interface {
	SaveRun(result RunResult) error
}

// RunResult is the outcome of one experience run.
type RunResult struct {
	RunID          string
	Layout         string
	Preset         string
	Outcome        string // "finished" or the stop reason
	Waves          int    // Configured waves
	WavesCompleted int
	Duration       float64 // Simulation seconds
	StartedAt      time.Time
	Actors         []ActorResult
}

// ActorResult is one actor's standing at the end of a run.
type ActorResult struct {
	Actor        int
	Name         string
	Level        string
	Efficiency   float64 // Of the last finished wave
	Extinguished float64 // Over the whole run
	FiresCleared int
	Active       bool
}

const OutcomeFinished = "finished"

type recorder struct {
	s      *Session
	layout string
	preset string
	saver  RunSaver
	clock  func() time.Time

	running   bool
	startedAt time.Time
	startSim  float64
	completed int

	mu      sync.Mutex
	last    RunResult
	hasLast bool
	runs    int

	wg sync.WaitGroup
}

func newRecorder(s *Session, layout, preset string, saver RunSaver, clock func() time.Time) *recorder {
	r := &recorder{s: s, layout: layout, preset: preset, saver: saver, clock: clock}
	s.bus.Subscribe(r.onEvent,
		events.KindExperienceStarted,
		events.KindWaveCompleted,
		events.KindExperienceStopped,
		events.KindExperienceFinished,
	)
	return r
}

func (r *recorder) onEvent(e events.Event) {
	switch ev := e.(type) {
	case events.ExperienceStarted:
		r.running = true
		r.startedAt = r.clock()
		r.startSim = r.s.scheduler.Now()
		r.completed = 0
	case events.WaveCompleted:
		r.completed++
	case events.ExperienceStopped:
		r.finish(ev.Reason.String())
	case events.ExperienceFinished:
		r.finish(OutcomeFinished)
	}
}

func (r *recorder) finish(outcome string) {
	if !r.running {
		return
	}
	r.running = false
	r.s.beginCooldown()

	result := RunResult{
		RunID:          fmt.Sprintf("run-%d", r.startedAt.UnixNano()),
		Layout:         r.layout,
		Preset:         r.preset,
		Outcome:        outcome,
		Waves:          r.s.scheduler.Waves(),
		WavesCompleted: r.completed,
		Duration:       r.s.scheduler.Now() - r.startSim,
		StartedAt:      r.startedAt,
	}
	for _, rec := range r.s.tracker.Records() {
		if rec.Actor == core.ActorUnknown {
			continue
		}
		result.Actors = append(result.Actors, ActorResult{
			Actor:        int(rec.Actor),
			Name:         rec.Name,
			Level:        rec.Level.String(),
			Efficiency:   rec.Efficiency,
			Extinguished: rec.Total,
			FiresCleared: rec.FiresCleared,
			Active:       rec.Active,
		})
	}

	r.mu.Lock()
	r.last = result
	r.hasLast = true
	r.runs++
	r.mu.Unlock()

	r.s.logger.Info("run recorded", "run", result.RunID, "outcome", outcome, "waves", result.WavesCompleted)

	if r.saver == nil {
		return
	}
	// Best effort save, don't block the tick loop
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.saver.SaveRun(result); err != nil {
			r.s.logger.Error("cannot save run", "run", result.RunID, "err", err)
		}
	}()
}

func (r *recorder) wait() {
	r.wg.Wait()
}

// LastRun returns the most recent finished or stopped run.
func (s *Session) LastRun() (RunResult, bool) {
	s.recorder.mu.Lock()
	defer s.recorder.mu.Unlock()
	return s.recorder.last, s.recorder.hasLast
}

// Runs returns how many runs ended since the session was created.
func (s *Session) Runs() int {
	s.recorder.mu.Lock()
	defer s.recorder.mu.Unlock()
	return s.recorder.runs
}
