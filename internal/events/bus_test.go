package events

import (
	"testing"

	"github.com/vovakirdan/firewave/internal/core"
)

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.Subscribe(func(ev Event) { got = append(got, "a:"+ev.Kind().String()) })
	b.Subscribe(func(ev Event) { got = append(got, "b:"+ev.Kind().String()) })

	b.Publish(FireIgnited{Node: "n1"}, WaveStarted{Index: 0})
	if n := b.Dispatch(); n != 2 {
		t.Fatalf("Dispatch() = %d, expected 2", n)
	}

	expected := []string{"a:fire_ignited", "b:fire_ignited", "a:wave_started", "b:wave_started"}
	if len(got) != len(expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("delivery %d = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestBusKindFilter(t *testing.T) {
	b := NewBus()
	count := 0
	b.Subscribe(func(Event) { count++ }, KindFireExtinguished)

	b.Publish(FireIgnited{Node: "n1"}, FireExtinguished{Node: "n1", Actor: 1})
	b.Dispatch()

	if count != 1 {
		t.Errorf("filtered handler called %d times, expected 1", count)
	}
}

func TestBusUnsubscribeRemovesOriginalHandler(t *testing.T) {
	b := NewBus()
	calls := 0
	sub := b.Subscribe(func(Event) { calls++ })

	// Removing an unrelated token must not affect the registered handler.
	if b.Unsubscribe(sub + 100) {
		t.Error("Unsubscribe of unknown token should report false")
	}
	b.Publish(ExperienceStarted{})
	b.Dispatch()
	if calls != 1 {
		t.Fatalf("calls = %d, expected 1", calls)
	}

	if !b.Unsubscribe(sub) {
		t.Fatal("Unsubscribe of registered token should report true")
	}
	b.Publish(ExperienceStarted{})
	b.Dispatch()
	if calls != 1 {
		t.Errorf("handler still called after Unsubscribe (calls = %d)", calls)
	}
	if b.HandlerCount() != 0 {
		t.Errorf("HandlerCount() = %d, expected 0", b.HandlerCount())
	}
}

func TestBusUnsubscribeDuringDispatch(t *testing.T) {
	b := NewBus()
	var second Subscription
	secondCalls := 0

	b.Subscribe(func(Event) { b.Unsubscribe(second) })
	second = b.Subscribe(func(Event) { secondCalls++ })

	b.Publish(WaveCompleted{Index: 0})
	b.Dispatch()

	if secondCalls != 0 {
		t.Errorf("handler removed earlier in the same dispatch was still called")
	}
}

func TestBusNestedPublish(t *testing.T) {
	b := NewBus()
	var kinds []Kind

	b.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind())
		if ev.Kind() == KindFireExtinguished {
			b.Publish(WaveCompleted{Index: 1})
		}
	})

	b.Publish(FireExtinguished{Node: "n", Actor: core.ActorUnknown})
	if n := b.Dispatch(); n != 2 {
		t.Fatalf("Dispatch() = %d, expected nested event delivered too", n)
	}
	if kinds[1] != KindWaveCompleted {
		t.Errorf("second delivery = %v, expected wave_completed", kinds[1])
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d after dispatch", b.Pending())
	}
}

func TestStopReasonString(t *testing.T) {
	if StopReasonInactivity.String() != "inactivity" {
		t.Errorf("StopReasonInactivity = %q", StopReasonInactivity.String())
	}
	if KindFireDamaged.String() != "fire_damaged" {
		t.Errorf("KindFireDamaged = %q", KindFireDamaged.String())
	}
}
