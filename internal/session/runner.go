package session

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/firewave/internal/events"
)

// Command is a control request delivered to the tick goroutine.
type Command interface {
	command()
}

// StartCmd starts an experience if none is running.
type StartCmd struct{}

// StopCmd aborts the running experience.
type StopCmd struct {
	Reason events.StopReason
}

func (StartCmd) command() {}
func (StopCmd) command()  {}

// Runner drives a Session from a wall-clock ticker. The session is only
// touched from the Run goroutine or under the runner's lock.
type Runner struct {
	s        *Session
	tickRate int
	commands chan Command

	mu        sync.Mutex
	observers []func(Snapshot)

	done     chan struct{}
	doneOnce sync.Once
}

// NewRunner creates a runner ticking tickRate times per second.
func NewRunner(s *Session, tickRate int) *Runner {
	return &Runner{
		s:        s,
		tickRate: max(1, tickRate),
		commands: make(chan Command, 16),
		done:     make(chan struct{}),
	}
}

// OnTick registers a callback receiving a snapshot after every tick. It runs
// on the tick goroutine outside the lock.
func (r *Runner) OnTick(fn func(Snapshot)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Send delivers a command to the tick loop.
// Non-blocking, uses a buffered channel.
func (r *Runner) Send(cmd Command) {
	select {
	case r.commands <- cmd:
	default:
		// Channel full, drop command (rare under normal conditions)
	}
}

// Snapshot returns the session state from any goroutine.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.Snapshot()
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run ticks the session until ctx is cancelled. A running experience is
// stopped with StopReasonShutdown on exit.
func (r *Runner) Run(ctx context.Context) {
	defer r.doneOnce.Do(func() { close(r.done) })

	interval := time.Second / time.Duration(r.tickRate)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runTick(dt)
		case <-ctx.Done():
			r.mu.Lock()
			if r.s.scheduler.State().Running() {
				r.s.StopExperience(events.StopReasonShutdown)
			}
			r.mu.Unlock()
			r.s.Close()
			return
		}
	}
}

func (r *Runner) runTick(dt float64) {
	r.mu.Lock()
	r.drainCommands()
	r.s.Tick(dt)
	observers := r.observers
	var snap Snapshot
	if len(observers) > 0 {
		snap = r.s.Snapshot()
	}
	r.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (r *Runner) drainCommands() {
	for {
		select {
		case cmd := <-r.commands:
			switch c := cmd.(type) {
			case StartCmd:
				if err := r.s.StartExperience(); err != nil {
					r.s.logger.Error("cannot start experience", "err", err)
				}
			case StopCmd:
				r.s.StopExperience(c.Reason)
			}
		default:
			return
		}
	}
}
