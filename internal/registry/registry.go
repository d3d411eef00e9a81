// Package registry provides a global registry for input driver factories.
// Drivers register themselves in init() functions, allowing the CLI to
// discover scripted actors without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/session"
)

// Binding tells a driver which actor it plays and where.
type Binding struct {
	Actor  core.ActorID
	Region string // Layout region the actor covers; empty means everywhere
	Amount float64
	Seed   int64
}

// Driver produces input for one actor from session snapshots.
// Drivers contain no timing of their own; the caller steps them once per tick.
type Driver interface {
	// ID returns a unique identifier for this driver (e.g., "steady").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset binds the driver to an actor and clears its state.
	Reset(b Binding)

	// Step returns the contributions for this tick.
	Step(snap session.Snapshot, dt float64) []input.Contribution
}

// DriverInfo contains metadata about a registered driver.
type DriverInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new driver instance.
type Factory func() Driver

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a driver factory to the registry.
// Typically called from a driver's init() function.
// Panics if a driver with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: driver %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered drivers, sorted by ID.
func List() []DriverInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]DriverInfo, 0, len(factories))
	for id := range factories {
		result = append(result, DriverInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new driver by its ID.
// Returns an error if the driver ID is not registered.
func Create(id string) (Driver, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown driver %q", id)
	}

	return f(), nil
}

// Exists checks if a driver with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
