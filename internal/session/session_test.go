package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/wave"
)

type memSaver struct {
	mu   sync.Mutex
	runs []RunResult
}

func (m *memSaver) SaveRun(r RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

func (m *memSaver) saved() []RunResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunResult(nil), m.runs...)
}

func newTestSession(t *testing.T, saver RunSaver) *Session {
	t.Helper()
	exp := config.DefaultExperience()
	exp.Waves.Interval = 0.5
	s, err := New(Options{
		Experience: exp,
		Layout:     config.DefaultLayout(),
		Preset:     config.PresetStandard,
		Saver:      saver,
		Clock:      func() time.Time { return time.Unix(1700000000, 0) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// sprayBurning aims every burning fire with its region owner, like two
// players covering their own side.
func sprayBurning(s *Session) {
	for _, n := range s.Snapshot().Burning() {
		actor := core.ActorID(1)
		if n.Region == "right" {
			actor = 2
		}
		s.Spray(n.ID, actor)
	}
}

func TestSessionRunsToCompletion(t *testing.T) {
	saver := &memSaver{}
	s := newTestSession(t, saver)

	var kinds []events.Kind
	s.Bus().Subscribe(func(e events.Event) { kinds = append(kinds, e.Kind()) })

	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5000 && s.Scheduler().State() != wave.StateFinished; i++ {
		sprayBurning(s)
		s.Tick(1.0 / 30)
	}
	s.Close()

	if s.Scheduler().State() != wave.StateFinished {
		t.Fatalf("State() = %v, want finished", s.Scheduler().State())
	}
	if kinds[len(kinds)-1] != events.KindExperienceFinished {
		t.Errorf("last event = %v, want experience_finished", kinds[len(kinds)-1])
	}

	runs := saver.saved()
	if len(runs) != 1 {
		t.Fatalf("saved %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.Outcome != OutcomeFinished || run.WavesCompleted != 3 || run.Layout != "installation" {
		t.Errorf("run = %+v", run)
	}
	if run.Preset != "standard" || run.RunID == "" || len(run.Actors) != 2 {
		t.Errorf("run metadata = %+v", run)
	}
	last, ok := s.LastRun()
	if !ok || last.RunID != run.RunID {
		t.Errorf("LastRun() = %+v, %v", last, ok)
	}
}

func TestSessionIgnoresInvalidInput(t *testing.T) {
	s := newTestSession(t, nil)
	s.Submit(input.Contribution{Node: "nowhere", Actor: 1, Amount: 50})
	s.Submit(input.Contribution{Node: "left-1", Actor: 1, Amount: 50})
	s.Tick(0.1)

	for _, n := range s.Graph().Nodes() {
		if n.Intensity() != 0 {
			t.Errorf("%s intensity = %v, want 0", n.ID(), n.Intensity())
		}
	}
}

func TestSessionIntensityHook(t *testing.T) {
	s := newTestSession(t, nil)
	got := map[core.NodeID]float64{}
	s.SetIntensityHook(func(id core.NodeID, v float64) { got[id] = v })

	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}
	s.Tick(0.1)
	if got["center"] != 1 {
		t.Errorf("hook for center = %v, want 1", got["center"])
	}

	s.Submit(input.Contribution{Node: "center", Actor: 1, Amount: 10000})
	s.Tick(0.1)
	if v, ok := got["center"]; !ok || v != 0 {
		t.Errorf("hook after extinguish = %v, %v, want 0", v, ok)
	}
}

func TestSessionAutoStartAndCooldown(t *testing.T) {
	s := newTestSession(t, nil)
	s.ObserveControl("p1", 0)
	s.ObserveControl("p1", 80)
	s.Tick(0.1)
	if !s.Scheduler().State().Running() {
		t.Fatal("movement did not start the experience")
	}

	s.StopExperience(events.StopReasonManual)
	s.ObserveControl("p1", 0)
	s.Tick(0.1)
	if s.Scheduler().State().Running() {
		t.Error("experience restarted during cooldown")
	}

	for i := 0; i < 60; i++ {
		s.Tick(0.1)
	}
	s.ObserveControl("p1", 90)
	s.Tick(0.1)
	if !s.Scheduler().State().Running() {
		t.Error("experience did not restart after cooldown")
	}
	if s.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", s.Runs())
	}
}

func TestSessionActivityKeepsRunAlive(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 700; i++ {
		s.Submit(input.Contribution{Actor: 1})
		s.Tick(0.1)
	}
	if !s.Scheduler().State().Running() {
		t.Error("activity-only input did not reset the watchdog")
	}

	for i := 0; i < 601; i++ {
		s.Tick(0.1)
	}
	last, ok := s.LastRun()
	if !ok || last.Outcome != "inactivity" {
		t.Errorf("LastRun() = %+v, want inactivity outcome", last)
	}
}

func TestSessionConcurrentSubmit(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for p := 1; p <= 4; p++ {
		wg.Add(1)
		go func(actor core.ActorID) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Spray("center", actor)
			}
		}(core.ActorID(p))
	}
	for i := 0; i < 50; i++ {
		s.Tick(0.01)
	}
	wg.Wait()
	s.Tick(0.01)

	if s.Queue().Pushed() != 800 {
		t.Errorf("Pushed() = %d, want 800", s.Queue().Pushed())
	}
	if s.Queue().Len() != 0 {
		t.Errorf("queue not drained: %d", s.Queue().Len())
	}
}

func TestNewRejectsBadLayout(t *testing.T) {
	layout := config.DefaultLayout()
	layout.SeedNode = "nowhere"
	_, err := New(Options{Experience: config.DefaultExperience(), Layout: layout})
	if !errors.Is(err, config.ErrUnknownSeed) {
		t.Errorf("New() err = %v, want ErrUnknownSeed", err)
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestSession(t, nil)
	if err := s.StartExperience(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if !snap.Running || snap.Waves != 3 || len(snap.Nodes) != 9 || len(snap.Actors) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	center, ok := snap.Node("center")
	if !ok || center.Scale != 1 || center.X != 30 {
		t.Errorf("center view = %+v", center)
	}
	if len(snap.Burning()) != 1 {
		t.Errorf("Burning() = %v", snap.Burning())
	}
}

func TestRunnerCommandsAndShutdown(t *testing.T) {
	s := newTestSession(t, nil)
	r := NewRunner(s, 200)

	running := make(chan struct{})
	var once sync.Once
	r.OnTick(func(snap Snapshot) {
		if snap.Running {
			once.Do(func() { close(running) })
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	r.Send(StartCmd{})

	select {
	case <-running:
	case <-time.After(5 * time.Second):
		t.Fatal("runner never started the experience")
	}
	cancel()
	<-r.Done()

	last, ok := s.LastRun()
	if !ok || last.Outcome != "shutdown" {
		t.Errorf("LastRun() = %+v, want shutdown outcome", last)
	}
}

func TestSessionSpreadDelayModes(t *testing.T) {
	// Wave 0 belongs to a beginner, whose skill delay is 1.5s. The layout
	// gives the left-3 to left-4 edge 2s against a default of 1s.
	tests := []struct {
		mode string
		want float64
	}{
		{"edge", 2},
		{"scaled", 3},
		{"skill", 1.5},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			exp := config.DefaultExperience()
			exp.Spread.DelayMode = tc.mode
			s, err := New(Options{Experience: exp, Layout: config.DefaultLayout()})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			at := map[core.NodeID]float64{}
			s.Bus().Subscribe(func(e events.Event) {
				at[e.(events.FireIgnited).Node] = s.Scheduler().Now()
			}, events.KindFireIgnited)

			if err := s.StartExperience(); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 200; i++ {
				s.Tick(0.1)
			}
			l3, ok3 := at["left-3"]
			l4, ok4 := at["left-4"]
			if !ok3 || !ok4 {
				t.Fatalf("ignitions = %v", at)
			}
			if got := l4 - l3; math.Abs(got-tc.want) > 0.05 {
				t.Errorf("left-3 to left-4 took %.2fs, want %.2fs", got, tc.want)
			}
		})
	}
}
