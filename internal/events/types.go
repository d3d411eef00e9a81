// Package events defines the simulation events published to presentation
// layers and the callback registry that delivers them.
package events

import (
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
)

// Kind identifies an event type for filtering and serialization.
type Kind int

const (
	KindFireIgnited Kind = iota
	KindFireExtinguished
	KindFireDamaged
	KindFireWeakened
	KindWaveStarted
	KindWaveCompleted
	KindExperienceStarted
	KindExperienceStopped
	KindExperienceFinished
)

// String returns the wire name of the event kind.
func (k Kind) String() string {
	switch k {
	case KindFireIgnited:
		return "fire_ignited"
	case KindFireExtinguished:
		return "fire_extinguished"
	case KindFireDamaged:
		return "fire_damaged"
	case KindFireWeakened:
		return "fire_weakened"
	case KindWaveStarted:
		return "wave_started"
	case KindWaveCompleted:
		return "wave_completed"
	case KindExperienceStarted:
		return "experience_started"
	case KindExperienceStopped:
		return "experience_stopped"
	case KindExperienceFinished:
		return "experience_finished"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is implemented by every simulation event.
type Event interface {
	Kind() Kind
}

// CascadeID identifies one spread cascade. Zero means "not part of a cascade".
type CascadeID uint64

// FireIgnited is published when a node starts burning.
type FireIgnited struct {
	Node    core.NodeID
	Cascade CascadeID // Non-zero when the ignition came from a spread
}

func (FireIgnited) Kind() Kind { return KindFireIgnited }

// FireExtinguished is published exactly once per ignite/extinguish cycle.
type FireExtinguished struct {
	Node  core.NodeID
	Actor core.ActorID // Last actor whose input reached the node
}

func (FireExtinguished) Kind() Kind { return KindFireExtinguished }

// FireDamaged reports intensity removed from a node by one actor in one tick.
type FireDamaged struct {
	Node   core.NodeID
	Actor  core.ActorID
	Amount float64
}

func (FireDamaged) Kind() Kind { return KindFireDamaged }

// FireWeakened is published once per ignition when a node drops below its
// weaken threshold.
type FireWeakened struct {
	Node core.NodeID
}

func (FireWeakened) Kind() Kind { return KindFireWeakened }

// WaveStarted is published after a wave's fires have been selected.
type WaveStarted struct {
	Index int
	Nodes int // Number of nodes assigned up front
}

func (WaveStarted) Kind() Kind { return KindWaveStarted }

// WaveCompleted is published when every fire of a wave is out.
type WaveCompleted struct {
	Index    int
	Duration float64 // Seconds of simulation time
}

func (WaveCompleted) Kind() Kind { return KindWaveCompleted }

// ExperienceStarted is published when a run leaves Idle.
type ExperienceStarted struct{}

func (ExperienceStarted) Kind() Kind { return KindExperienceStarted }

// StopReason describes why a run was aborted.
type StopReason int

const (
	StopReasonManual     StopReason = iota // Operator or CLI request
	StopReasonInactivity                   // Watchdog expired
	StopReasonRestart                      // Stopped to start over
	StopReasonShutdown                     // Process is exiting
)

func (r StopReason) String() string {
	switch r {
	case StopReasonManual:
		return "manual"
	case StopReasonInactivity:
		return "inactivity"
	case StopReasonRestart:
		return "restart"
	case StopReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ExperienceStopped is published when a run is aborted from any state.
type ExperienceStopped struct {
	Reason StopReason
}

func (ExperienceStopped) Kind() Kind { return KindExperienceStopped }

// ExperienceFinished is published when the last wave completes.
type ExperienceFinished struct {
	Waves int
}

func (ExperienceFinished) Kind() Kind { return KindExperienceFinished }
