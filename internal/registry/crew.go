package registry

import (
	"fmt"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/session"
)

// Crew steps one driver per configured actor and feeds their output to a
// session.
type Crew struct {
	s       *session.Session
	dt      float64
	drivers []Driver
}

// NewCrew creates drivers for the session's actors. ids are assigned to
// actors in configuration order; the last id repeats for remaining actors.
func NewCrew(s *session.Session, dt float64, seed int64, ids ...string) (*Crew, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("registry: no drivers given")
	}
	exp := s.Experience()
	c := &Crew{s: s, dt: dt}
	for i, a := range exp.Actors {
		id := ids[min(i, len(ids)-1)]
		d, err := Create(id)
		if err != nil {
			return nil, err
		}
		d.Reset(bindingFor(exp, a, seed))
		c.drivers = append(c.drivers, d)
	}
	return c, nil
}

func bindingFor(exp config.Experience, a config.ActorConfig, seed int64) Binding {
	return Binding{
		Actor:  core.ActorID(a.ID),
		Region: a.Region,
		Amount: exp.Input.SprayAmount,
		Seed:   seed,
	}
}

// Drivers returns the crew's drivers in actor order.
func (c *Crew) Drivers() []Driver {
	return c.drivers
}

// OnTick steps every driver against snap and submits their contributions.
// It is a session.Runner tick observer; Submit is safe from any goroutine.
func (c *Crew) OnTick(snap session.Snapshot) {
	for _, d := range c.drivers {
		for _, in := range d.Step(snap, c.dt) {
			c.s.Submit(in)
		}
	}
}

// Step runs one headless tick: drivers act on the current state, then the
// session advances.
func (c *Crew) Step() {
	c.OnTick(c.s.Snapshot())
	c.s.Tick(c.dt)
}
