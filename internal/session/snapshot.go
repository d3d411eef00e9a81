package session

import (
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/fire"
)

// NodeView is the presentation state of one fire.
type NodeView struct {
	ID         core.NodeID `json:"id"`
	Region     string      `json:"region"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	State      string      `json:"state"`
	Intensity  float64     `json:"intensity"`
	Normalized float64     `json:"normalized"`
	Scale      float64     `json:"scale"`
}

// ActorView is the presentation state of one actor.
type ActorView struct {
	ID           core.ActorID `json:"id"`
	Name         string       `json:"name"`
	Level        string       `json:"level"`
	Efficiency   float64      `json:"efficiency"`
	Extinguished float64      `json:"extinguished"`
	FiresCleared int          `json:"fires_cleared"`
	Active       bool         `json:"active"`
	Region       string       `json:"region"`
}

// Snapshot is a copy of the session state for renderers and drivers.
type Snapshot struct {
	Tick      uint64      `json:"tick"`
	Time      float64     `json:"time"`
	State     string      `json:"state"`
	Running   bool        `json:"running"`
	Wave      int         `json:"wave"`
	Waves     int         `json:"waves"`
	Remaining int         `json:"remaining"`
	IdleFor   float64     `json:"idle_for"`
	Nodes     []NodeView  `json:"nodes"`
	Actors    []ActorView `json:"actors"`
}

// Burning reports whether the node is on fire.
func (v NodeView) Burning() bool {
	return v.State == fire.StateActive.String() || v.State == fire.StateExtinguishing.String()
}

// Burning returns the views of burning nodes.
func (s Snapshot) Burning() []NodeView {
	var out []NodeView
	for _, n := range s.Nodes {
		if n.Burning() {
			out = append(out, n)
		}
	}
	return out
}

// Node returns the view of one node.
func (s Snapshot) Node(id core.NodeID) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	sched := s.scheduler
	snap := Snapshot{
		Tick:      s.ticks,
		Time:      sched.Now(),
		State:     sched.State().String(),
		Running:   sched.State().Running(),
		Wave:      sched.Wave(),
		Waves:     sched.Waves(),
		Remaining: sched.Remaining(),
		IdleFor:   sched.IdleFor(),
	}
	for _, n := range s.graph.Nodes() {
		v := NodeView{
			ID:         n.ID(),
			State:      n.State().String(),
			Intensity:  n.Intensity(),
			Normalized: n.Normalized(),
			Scale:      fire.FlameScale(n.Normalized()),
		}
		if spec, ok := s.layout.Node(n.ID()); ok {
			v.Region = spec.Region
			v.X, v.Y = spec.Pos.X, spec.Pos.Y
		}
		snap.Nodes = append(snap.Nodes, v)
	}
	regions := make(map[core.ActorID]string, len(s.exp.Actors))
	for _, a := range s.exp.Actors {
		regions[core.ActorID(a.ID)] = a.Region
	}
	for _, r := range s.tracker.Records() {
		if r.Actor == core.ActorUnknown {
			continue
		}
		snap.Actors = append(snap.Actors, ActorView{
			ID:           r.Actor,
			Name:         r.Name,
			Level:        r.Level.String(),
			Efficiency:   r.Efficiency,
			Extinguished: r.Total,
			FiresCleared: r.FiresCleared,
			Active:       r.Active,
			Region:       regions[r.Actor],
		})
	}
	return snap
}
