package input

import "testing"

func TestStarterThreshold(t *testing.T) {
	s := NewStarter(DefaultStarterConfig())
	if s.Observe("p1", 500) {
		t.Error("first reading started the experience")
	}
	if s.Observe("p1", 540) {
		t.Error("movement below threshold started the experience")
	}
	if !s.Observe("p1", 600) {
		t.Error("movement of 60 did not start the experience")
	}
	if s.Observe("p2", 0) {
		t.Error("first reading of another control started the experience")
	}
}

func TestStarterCooldown(t *testing.T) {
	s := NewStarter(DefaultStarterConfig())
	s.Observe("p1", 0)
	s.BeginCooldown()
	if s.Armed() {
		t.Error("armed during cooldown")
	}
	if s.Observe("p1", 100) {
		t.Error("started during cooldown")
	}
	s.Advance(4.9)
	if s.Observe("p1", 0) {
		t.Error("started before cooldown elapsed")
	}
	s.Advance(0.1)
	if !s.Observe("p1", 100) {
		t.Error("did not start after cooldown")
	}
}

func TestStarterDisabled(t *testing.T) {
	s := NewStarter(StarterConfig{MovementThreshold: 1})
	s.Observe("p1", 0)
	if s.Observe("p1", 100) || s.Armed() {
		t.Error("disabled starter fired")
	}
}
