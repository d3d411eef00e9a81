package registry

import (
	"strings"
	"testing"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/session"
)

type echoDriver struct {
	bind  Binding
	steps int
}

func (d *echoDriver) ID() string    { return "test-echo" }
func (d *echoDriver) Title() string { return "Echo" }

func (d *echoDriver) Reset(b Binding) {
	d.bind = b
	d.steps = 0
}

func (d *echoDriver) Step(snap session.Snapshot, dt float64) []input.Contribution {
	d.steps++
	return []input.Contribution{{Actor: d.bind.Actor}}
}

func init() {
	Register("test-echo", func() Driver { return &echoDriver{} })
}

func TestRegistryListAndCreate(t *testing.T) {
	if !Exists("test-echo") {
		t.Fatal("test-echo should be registered")
	}
	if Exists("nope") {
		t.Error("unknown driver reported as existing")
	}

	found := false
	list := List()
	for i, info := range list {
		if info.ID == "test-echo" {
			found = true
			if info.Title != "Echo" {
				t.Errorf("expected title Echo, got %q", info.Title)
			}
		}
		if i > 0 && list[i-1].ID >= info.ID {
			t.Errorf("list not sorted: %s >= %s", list[i-1].ID, info.ID)
		}
	}
	if !found {
		t.Error("test-echo missing from List")
	}

	d, err := Create("test-echo")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID() != "test-echo" {
		t.Errorf("unexpected driver %q", d.ID())
	}

	if _, err := Create("nope"); err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("expected unknown driver error, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("test-echo", func() Driver { return &echoDriver{} })
}

func TestCrewBindsActors(t *testing.T) {
	s, err := session.New(session.Options{
		Experience: config.DefaultExperience(),
		Layout:     config.DefaultLayout(),
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	if _, err := NewCrew(s, 0.1, 1); err == nil {
		t.Error("expected error without drivers")
	}
	if _, err := NewCrew(s, 0.1, 1, "nope"); err == nil {
		t.Error("expected error for unknown driver")
	}

	crew, err := NewCrew(s, 0.1, 1, "test-echo")
	if err != nil {
		t.Fatalf("NewCrew: %v", err)
	}
	drivers := crew.Drivers()
	if len(drivers) != 2 {
		t.Fatalf("expected one driver per actor, got %d", len(drivers))
	}
	for i, want := range []struct {
		actor  core.ActorID
		region string
	}{{1, "left"}, {2, "right"}} {
		d := drivers[i].(*echoDriver)
		if d.bind.Actor != want.actor || d.bind.Region != want.region {
			t.Errorf("driver %d bound to %v/%q", i, d.bind.Actor, d.bind.Region)
		}
		if d.bind.Amount != 40 {
			t.Errorf("driver %d amount = %v, want spray amount", i, d.bind.Amount)
		}
	}

	crew.Step()
	for i, d := range drivers {
		if d.(*echoDriver).steps != 1 {
			t.Errorf("driver %d stepped %d times", i, d.(*echoDriver).steps)
		}
	}
	if s.Queue().Pushed() != 2 {
		t.Errorf("expected 2 contributions pushed, got %d", s.Queue().Pushed())
	}
}
