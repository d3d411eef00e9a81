package core

import (
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := NewRect(5, 5, 10, 10)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"top-left corner", 5, 5, true},
		{"inside", 10, 10, true},
		{"right edge (exclusive)", 15, 10, false},
		{"bottom edge (exclusive)", 10, 15, false},
		{"left of rect", 4, 10, false},
		{"above rect", 10, 4, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	if got := ClampF(120, 0, 100); got != 100 {
		t.Errorf("ClampF(120, 0, 100) = %v, expected 100", got)
	}
	if got := ClampF(-0.5, 0, 100); got != 0 {
		t.Errorf("ClampF(-0.5, 0, 100) = %v, expected 0", got)
	}
}

func TestMapRange(t *testing.T) {
	// Potentiometer range onto a yaw angle, as the spray heads do.
	if got := MapRange(0, 0, 1023, 135, -135); got != 135 {
		t.Errorf("MapRange(0) = %v, expected 135", got)
	}
	if got := MapRange(1023, 0, 1023, 135, -135); got != -135 {
		t.Errorf("MapRange(1023) = %v, expected -135", got)
	}
	if got := MapRange(3, 2, 2, 7, 9); got != 7 {
		t.Errorf("degenerate MapRange = %v, expected 7", got)
	}
}

func TestFinite(t *testing.T) {
	if !Finite(1.5) {
		t.Error("1.5 should be finite")
	}
	if Finite(math.NaN()) || Finite(math.Inf(1)) {
		t.Error("NaN and Inf should not be finite")
	}
}

func TestActorIDString(t *testing.T) {
	if got := ActorID(2).String(); got != "P2" {
		t.Errorf("ActorID(2).String() = %q, expected P2", got)
	}
	if got := ActorUnknown.String(); got != "unknown" {
		t.Errorf("ActorUnknown.String() = %q, expected unknown", got)
	}
}

func TestStepSeconds(t *testing.T) {
	cfg := RuntimeConfig{TickRate: 50}
	if got := cfg.StepSeconds(); got != 0.02 {
		t.Errorf("StepSeconds() = %v, expected 0.02", got)
	}
	if got := (RuntimeConfig{}).StepSeconds(); got <= 0 {
		t.Errorf("StepSeconds() with zero tick rate = %v, expected positive fallback", got)
	}
}
