package fire

import (
	"math"
	"testing"

	"github.com/vovakirdan/firewave/internal/core"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func burningNode(t *testing.T) *Node {
	t.Helper()
	n := NewNode("n", DefaultParams())
	if !n.Ignite() {
		t.Fatal("Ignite() on dormant node returned false")
	}
	return n
}

func TestNodeLargeExtinguishClampsToZero(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(200, 1)

	res := n.Tick(1)
	if n.Intensity() != 0 {
		t.Errorf("Intensity() = %v, want 0", n.Intensity())
	}
	if !res.Extinguished {
		t.Fatal("expected Extinguished on the tick reaching zero")
	}
	if res.Actor != 1 {
		t.Errorf("Actor = %v, want 1", res.Actor)
	}
	if n.State() != StateExtinguished {
		t.Errorf("State() = %v, want extinguished", n.State())
	}

	for i := 0; i < 5; i++ {
		if res := n.Tick(1); res.Extinguished {
			t.Fatalf("Extinguished reported again on tick %d", i)
		}
	}
}

func TestNodeCoalescedInput(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(30, 1)
	n.ApplyExtinguish(40, 2)
	if n.State() != StateExtinguishing {
		t.Errorf("State() with pending input = %v, want extinguishing", n.State())
	}

	n.Tick(0.5)
	if !near(n.Intensity(), 65) {
		t.Errorf("Intensity() = %v, want 65", n.Intensity())
	}
	if n.Pending() != 0 {
		t.Errorf("Pending() = %v after tick, want 0", n.Pending())
	}
}

func TestNodeCoalescingMatchesSingleContribution(t *testing.T) {
	split := burningNode(t)
	whole := burningNode(t)
	amounts := []float64{5, 12.5, 7, 30}
	sum := 0.0
	for i, a := range amounts {
		split.ApplyExtinguish(a, core.ActorID(i%2+1))
		sum += a
	}
	whole.ApplyExtinguish(sum, 1)

	split.Tick(0.25)
	whole.Tick(0.25)
	if !near(split.Intensity(), whole.Intensity()) {
		t.Errorf("coalesced %v != single %v", split.Intensity(), whole.Intensity())
	}
}

func TestNodeDamageSplitByActor(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(30, 1)
	n.ApplyExtinguish(10, 2)
	n.ApplyExtinguish(20, 1)

	res := n.Tick(1)
	if len(res.Damage) != 2 {
		t.Fatalf("len(Damage) = %d, want 2", len(res.Damage))
	}
	if res.Damage[0].Actor != 1 || !near(res.Damage[0].Amount, 50) {
		t.Errorf("Damage[0] = %+v, want actor 1 amount 50", res.Damage[0])
	}
	if res.Damage[1].Actor != 2 || !near(res.Damage[1].Amount, 10) {
		t.Errorf("Damage[1] = %+v, want actor 2 amount 10", res.Damage[1])
	}
}

func TestNodeDamageCappedByIntensity(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(300, 1)
	n.ApplyExtinguish(100, 2)

	res := n.Tick(1)
	total := 0.0
	for _, s := range res.Damage {
		total += s.Amount
	}
	if !near(total, 100) {
		t.Errorf("total damage = %v, want 100", total)
	}
	if !near(res.Damage[0].Amount, 75) {
		t.Errorf("actor 1 share = %v, want 75", res.Damage[0].Amount)
	}
}

func TestNodeIgnoresInputWhenNotBurning(t *testing.T) {
	n := NewNode("n", DefaultParams())
	if n.ApplyExtinguish(10, 1) {
		t.Error("ApplyExtinguish on dormant node accepted input")
	}
	n.Tick(1)
	if n.State() != StateDormant || n.Intensity() != 0 {
		t.Errorf("dormant node changed: state=%v intensity=%v", n.State(), n.Intensity())
	}

	n.Ignite()
	n.ApplyExtinguish(500, 1)
	n.Tick(1)
	if n.ApplyExtinguish(10, 2) {
		t.Error("ApplyExtinguish on extinguished node accepted input")
	}
	if n.LastActor() != 1 {
		t.Errorf("LastActor() = %v, want 1", n.LastActor())
	}
}

func TestNodeRejectsBadAmounts(t *testing.T) {
	n := burningNode(t)
	for _, a := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if n.ApplyExtinguish(a, 1) {
			t.Errorf("ApplyExtinguish(%v) accepted", a)
		}
	}
	if n.State() != StateActive {
		t.Errorf("State() = %v, want active", n.State())
	}
}

func TestNodeRekindleBounded(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(20, 1)
	n.Tick(1)
	if !near(n.Intensity(), 80) {
		t.Fatalf("Intensity() = %v, want 80", n.Intensity())
	}

	n.Tick(1)
	if !near(n.Intensity(), 85) {
		t.Errorf("after rekindle Intensity() = %v, want 85", n.Intensity())
	}
	if n.State() != StateActive {
		t.Errorf("State() = %v, want active", n.State())
	}

	for i := 0; i < 100; i++ {
		n.Tick(1)
		if n.Intensity() < 0 || n.Intensity() > n.Params().MaxIntensity {
			t.Fatalf("intensity %v out of bounds", n.Intensity())
		}
	}
	if n.Intensity() != n.Params().MaxIntensity {
		t.Errorf("Intensity() = %v, want max", n.Intensity())
	}
}

func TestNodeIgniteWhileBurningIsNoop(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(40, 1)
	n.Tick(1)
	if n.Ignite() {
		t.Error("Ignite() on burning node returned true")
	}
	if !near(n.Intensity(), 60) {
		t.Errorf("Intensity() = %v, want 60", n.Intensity())
	}
	if n.Ignitions() != 1 {
		t.Errorf("Ignitions() = %d, want 1", n.Ignitions())
	}
}

func TestNodeWeakenedOncePerIgnition(t *testing.T) {
	n := burningNode(t)
	count := 0
	for i := 0; i < 4; i++ {
		n.ApplyExtinguish(20, 1)
		if n.Tick(1).Weakened {
			count++
		}
	}
	// 100 -> 80 -> 60 -> 40 -> 20
	if count != 1 {
		t.Errorf("Weakened reported %d times, want 1", count)
	}

	n.ApplyExtinguish(100, 1)
	n.Tick(1)
	n.Ignite()
	n.ApplyExtinguish(60, 2)
	if !n.Tick(1).Weakened {
		t.Error("expected Weakened after re-ignition")
	}
}

func TestNodeForceExtinguishAndReset(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(10, 1)
	if !n.ForceExtinguish() {
		t.Error("ForceExtinguish() on burning node returned false")
	}
	if n.Pending() != 0 || n.Intensity() != 0 {
		t.Errorf("pending=%v intensity=%v after force", n.Pending(), n.Intensity())
	}
	if res := n.Tick(1); res.Extinguished {
		t.Error("Tick after ForceExtinguish reported Extinguished")
	}
	if n.State() != StateExtinguished {
		t.Errorf("State() = %v, want extinguished", n.State())
	}

	n.Reset()
	if n.State() != StateDormant {
		t.Errorf("State() after Reset = %v, want dormant", n.State())
	}
}

func TestNodeZeroDtKeepsInput(t *testing.T) {
	n := burningNode(t)
	n.ApplyExtinguish(50, 1)
	n.Tick(0)
	if n.Pending() != 50 || n.Intensity() != 100 {
		t.Errorf("pending=%v intensity=%v, want 50/100", n.Pending(), n.Intensity())
	}
}

func TestFlameScale(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.1, 0.5},
		{0.33, 0.5},
		{0.5, 0.75},
		{0.66, 0.75},
		{0.9, 1},
		{1, 1},
	}
	for _, tt := range tests {
		if got := FlameScale(tt.in); got != tt.want {
			t.Errorf("FlameScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
