// Package bot provides scripted actors for headless runs and demos.
package bot

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/registry"
	"github.com/vovakirdan/firewave/internal/session"
)

const (
	defaultAmount = 40
	sprayPeriod   = 0.1 // Seconds between spray samples
)

func init() {
	registry.Register("steady", func() registry.Driver { return NewSteady() })
	registry.Register("erratic", func() registry.Driver { return NewErratic() })
	registry.Register("idle", func() registry.Driver { return NewIdle() })
}

// targets returns the burning nodes an actor should care about: its own
// region together with regions no actor covers, any burning node when those
// are quiet.
func targets(snap session.Snapshot, region string) []session.NodeView {
	burning := snap.Burning()
	if region == "" {
		return burning
	}
	covered := map[string]bool{region: true}
	for _, a := range snap.Actors {
		if a.Region != "" {
			covered[a.Region] = true
		}
	}
	var mine []session.NodeView
	for _, n := range burning {
		if n.Region == region || !covered[n.Region] {
			mine = append(mine, n)
		}
	}
	if len(mine) > 0 {
		return mine
	}
	return burning
}

// pacer releases spray samples every sprayPeriod. Node input is scaled by the
// tick length, so each release carries the factor that turns a per-second
// amount into the intensity due for the samples it covers.
type pacer struct {
	clock float64
}

func (p *pacer) take(dt float64) float64 {
	if !(dt > 0) {
		return 0
	}
	p.clock += dt
	if p.clock < sprayPeriod {
		return 0
	}
	n := math.Floor(p.clock / sprayPeriod)
	p.clock -= n * sprayPeriod
	return n * sprayPeriod / dt
}

func (p *pacer) reset() {
	p.clock = 0
}

func hottest(nodes []session.NodeView) (session.NodeView, bool) {
	if len(nodes) == 0 {
		return session.NodeView{}, false
	}
	best := nodes[0]
	for _, n := range nodes[1:] {
		if n.Intensity > best.Intensity {
			best = n
		}
	}
	return best, true
}

func amountOf(b registry.Binding) float64 {
	if b.Amount > 0 {
		return b.Amount
	}
	return defaultAmount
}

// Steady sprays the hottest fire in its region at a constant rate and keeps
// its aim until that fire is out.
type Steady struct {
	bind   registry.Binding
	target core.NodeID
	pace   pacer
}

// NewSteady creates a steady driver.
func NewSteady() *Steady {
	return &Steady{}
}

func (d *Steady) ID() string    { return "steady" }
func (d *Steady) Title() string { return "Steady hand" }

func (d *Steady) Reset(b registry.Binding) {
	d.bind = b
	d.target = ""
	d.pace.reset()
}

func (d *Steady) Step(snap session.Snapshot, dt float64) []input.Contribution {
	if !snap.Running {
		d.target = ""
		return nil
	}
	scale := d.pace.take(dt)
	if scale == 0 {
		return nil
	}

	if n, ok := snap.Node(d.target); !ok || !n.Burning() {
		d.target = ""
		if n, ok := hottest(targets(snap, d.bind.Region)); ok {
			d.target = n.ID
		}
	}
	if d.target == "" {
		return []input.Contribution{{Actor: d.bind.Actor}}
	}
	return []input.Contribution{{Node: d.target, Actor: d.bind.Actor, Amount: amountOf(d.bind) * scale}}
}

// Erratic picks a random fire, sprays it until it is out and sometimes misses
// entirely.
type Erratic struct {
	bind   registry.Binding
	rng    *rand.Rand
	target core.NodeID
	pace   pacer

	// Hit is the chance a spray sample lands on a fire.
	Hit float64
}

// NewErratic creates an erratic driver hitting 60% of the time.
func NewErratic() *Erratic {
	return &Erratic{Hit: 0.6, rng: rand.New(rand.NewSource(1))}
}

func (d *Erratic) ID() string    { return "erratic" }
func (d *Erratic) Title() string { return "Erratic sprayer" }

func (d *Erratic) Reset(b registry.Binding) {
	d.bind = b
	d.rng = rand.New(rand.NewSource(b.Seed + int64(b.Actor)))
	d.target = ""
	d.pace.reset()
}

func (d *Erratic) Step(snap session.Snapshot, dt float64) []input.Contribution {
	if !snap.Running {
		d.target = ""
		return nil
	}
	scale := d.pace.take(dt)
	if scale == 0 {
		return nil
	}

	if n, ok := snap.Node(d.target); !ok || !n.Burning() {
		d.target = ""
		if nodes := targets(snap, d.bind.Region); len(nodes) > 0 {
			d.target = nodes[d.rng.Intn(len(nodes))].ID
		}
	}
	if d.target == "" || d.rng.Float64() >= d.Hit {
		// Missed: the control still moved.
		return []input.Contribution{{Actor: d.bind.Actor}}
	}
	return []input.Contribution{{Node: d.target, Actor: d.bind.Actor, Amount: amountOf(d.bind) * scale}}
}

// Idle never touches its control.
type Idle struct{}

// NewIdle creates an idle driver.
func NewIdle() *Idle {
	return &Idle{}
}

func (Idle) ID() string                                          { return "idle" }
func (Idle) Title() string                                       { return "Idle bystander" }
func (Idle) Reset(registry.Binding)                              {}
func (Idle) Step(session.Snapshot, float64) []input.Contribution { return nil }
