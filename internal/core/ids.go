package core

import "strconv"

// NodeID identifies a fire point. IDs are stable for the lifetime of a layout.
type NodeID string

// ActorID identifies a participant (player station) whose input extinguishes fires.
type ActorID int

// ActorUnknown is the sentinel attribution for input that carries no known actor.
const ActorUnknown ActorID = -1

// String returns a human-readable actor label.
func (a ActorID) String() string {
	if a == ActorUnknown {
		return "unknown"
	}
	return "P" + strconv.Itoa(int(a))
}
