package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/session"
	"github.com/vovakirdan/firewave/internal/storage"
	"github.com/vovakirdan/firewave/internal/wave"
)

func newDrill(t *testing.T) (Model, *session.Session) {
	t.Helper()
	exp := config.DefaultExperience()
	exp.Autostart.Enabled = false
	s, err := session.New(session.Options{Experience: exp, Layout: config.DefaultLayout()})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	cfg := core.DefaultConfig()
	cfg.ScreenW, cfg.ScreenH = 80, 24
	return NewModel(s, cfg), s
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestDrillSeatsStartInOwnRegion(t *testing.T) {
	m, s := newDrill(t)
	aims := m.Aims()
	if len(aims) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(aims))
	}
	for actor, node := range aims {
		spec, ok := s.Layout().Node(node)
		if !ok {
			t.Fatalf("aim on unknown node %s", node)
		}
		want := "left"
		if actor == 2 {
			want = "right"
		}
		if spec.Region != want {
			t.Errorf("%s aims at %s in region %s, want %s", actor, node, spec.Region, want)
		}
	}
}

func TestDrillStartSprayStop(t *testing.T) {
	m, s := newDrill(t)

	m = press(m, runeKey('s'))
	if s.Scheduler().State() == wave.StateIdle {
		t.Fatal("start key should start the experience")
	}

	pushed := s.Queue().Pushed()
	m = press(m, runeKey('w'))
	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := s.Queue().Pushed() - pushed; got != 2 {
		t.Errorf("expected 2 sprays queued, got %d", got)
	}

	before := m.Aims()[1]
	m = press(m, runeKey('d'))
	if m.Aims()[1] == before {
		t.Error("aim right should move player 1")
	}

	m = press(m, runeKey('x'))
	if s.Scheduler().State() != wave.StateIdle {
		t.Errorf("stop key should stop the experience, state %s", s.Scheduler().State())
	}
}

func TestDrillTickAdvancesSession(t *testing.T) {
	m, s := newDrill(t)
	next, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if s.Ticks() != 1 {
		t.Errorf("expected 1 session tick, got %d", s.Ticks())
	}
	if view := next.(Model).View(); !strings.Contains(view, "FIREWAVE DRILL") {
		t.Error("view should contain the title")
	}
}

func TestDrillQuitStopsRun(t *testing.T) {
	m, s := newDrill(t)
	m = press(m, runeKey('s'))
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if s.Scheduler().State().Running() {
		t.Error("quitting should stop the running experience")
	}
	run, ok := s.LastRun()
	if !ok || run.Outcome != "shutdown" {
		t.Errorf("expected shutdown outcome, got %+v", run)
	}
}

func TestDrawField(t *testing.T) {
	screen := core.NewScreen(40, 12)
	snap := session.Snapshot{
		Nodes: []session.NodeView{
			{ID: "a", X: 0, Y: 2, State: "active", Normalized: 1, Scale: 1},
			{ID: "b", X: 10, Y: 2, State: "dormant"},
		},
	}
	DrawField(screen, snap, map[core.ActorID]core.NodeID{1: "a"})
	out := screen.String()

	if !strings.Contains(out, "(WWW)") {
		t.Errorf("expected full flame glyph in\n%s", out)
	}
	if !strings.Contains(out, "___") {
		t.Errorf("expected extinguished glyph in\n%s", out)
	}
	if !strings.Contains(out, "P1") {
		t.Errorf("expected aim marker in\n%s", out)
	}
}

func TestFlameGlyphTiers(t *testing.T) {
	tests := []struct {
		scale float64
		body  string
	}{
		{1, "(WWW)"},
		{0.75, " wWw "},
		{0.5, "  w  "},
		{0, " ___ "},
	}
	for _, tc := range tests {
		if _, body := flameGlyph(tc.scale); body != tc.body {
			t.Errorf("flameGlyph(%v) = %q, want %q", tc.scale, body, tc.body)
		}
	}
}

type fakeHistory struct {
	runs   []storage.RunRecord
	actors map[int][]storage.ActorRecord
	err    error
}

func (f fakeHistory) RecentRuns(limit int) ([]storage.RunRecord, error) {
	return f.runs, f.err
}

func (f fakeHistory) ActorHistory(actor int, limit int) ([]storage.ActorRecord, error) {
	return f.actors[actor], f.err
}

func TestHistoryViews(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := fakeHistory{
		runs: []storage.RunRecord{
			{Outcome: "finished", Waves: 3, WavesCompleted: 3, Duration: 95, Preset: "standard", StartedAt: at},
			{Outcome: "inactivity", Waves: 3, WavesCompleted: 1, Duration: 70, Preset: "standard", StartedAt: at},
		},
		actors: map[int][]storage.ActorRecord{
			1: {{Actor: 1, Level: "advanced", Efficiency: 31.5, Extinguished: 900, FiresCleared: 6, StartedAt: at}},
		},
	}

	m := NewHistoryModel(src, []HistoryView{{Title: "Player 1", Actor: 1}}, 100, 30)
	if len(m.Rows()) != 2 {
		t.Fatalf("expected 2 run rows, got %d", len(m.Rows()))
	}
	if m.Rows()[0][2] != "3/3" {
		t.Errorf("unexpected waves cell %q", m.Rows()[0][2])
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	rows := m.Rows()
	if len(rows) != 1 || rows[0][1] != "advanced" || rows[0][2] != "31.5" {
		t.Errorf("unexpected actor rows %v", rows)
	}
	if !strings.Contains(m.View(), "Player 1") {
		t.Error("view should show the actor tab")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if len(next.(HistoryModel).Rows()) != 2 {
		t.Error("shift+tab should return to all runs")
	}
}

func TestHistoryShowsError(t *testing.T) {
	m := NewHistoryModel(fakeHistory{err: errors.New("disk gone")}, nil, 60, 20)
	if !strings.Contains(m.View(), "disk gone") {
		t.Error("view should report the load error")
	}
}
