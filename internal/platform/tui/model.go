package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/input"
	"github.com/vovakirdan/firewave/internal/session"
)

// controlRange is the raw reading span of an aim control, like the
// potentiometers of the installation.
const controlRange = 1023

// seat is one keyboard player.
type seat struct {
	actor   core.ActorID
	control string
	aim     int
	keys    PlayerKeys
}

// Model is the Bubble Tea model of the local drill. It owns the session and
// advances it from its own tick messages.
type Model struct {
	s        *session.Session
	screen   *core.Screen
	config   core.RuntimeConfig
	keys     DrillKeyMap
	help     help.Model
	seats    []seat
	order    []core.NodeID // Fire points from left to right
	status   string
	quitting bool
}

// NewModel creates a drill for the given session.
func NewModel(s *session.Session, cfg core.RuntimeConfig) Model {
	keys := DefaultDrillKeyMap()
	m := Model{
		s:      s,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH-1),
		config: cfg,
		keys:   keys,
		help:   help.New(),
	}

	nodes := layoutNodes(s)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].x < nodes[j].x })
	for _, n := range nodes {
		m.order = append(m.order, n.id)
	}

	for i, a := range s.Experience().Actors {
		pk, ok := keys.player(i)
		if !ok {
			break
		}
		st := seat{actor: core.ActorID(a.ID), control: fmt.Sprintf("aim-%d", a.ID), keys: pk}
		for j, n := range nodes {
			if n.region == a.Region {
				st.aim = j
				break
			}
		}
		m.seats = append(m.seats, st)
	}
	return m
}

type sessionNode struct {
	id     core.NodeID
	region string
	x      int
}

func layoutNodes(s *session.Session) []sessionNode {
	layout := s.Layout()
	out := make([]sessionNode, 0, len(layout.Nodes))
	for _, n := range layout.Nodes {
		out = append(out, sessionNode{id: core.NodeID(n.ID), region: n.Region, x: n.Pos.X})
	}
	return out
}

// Init starts the tick loop and reports the initial control positions.
func (m Model) Init() tea.Cmd {
	for _, st := range m.seats {
		m.s.ObserveControl(st.control, m.controlValue(st.aim))
	}
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height-1)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.s.Tick(m.config.StepSeconds())
		return m, tickCmd(m.config.TickRate)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.s.Scheduler().State().Running() {
			m.s.StopExperience(events.StopReasonShutdown)
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		if m.s.Scheduler().State().Running() {
			return m, nil
		}
		if err := m.s.StartExperience(); err != nil {
			m.status = err.Error()
		} else {
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		m.s.StopExperience(events.StopReasonManual)
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	for i := range m.seats {
		st := &m.seats[i]
		switch {
		case key.Matches(msg, st.keys.Left):
			m.moveAim(st, -1)
		case key.Matches(msg, st.keys.Right):
			m.moveAim(st, 1)
		case key.Matches(msg, st.keys.Spray):
			if len(m.order) > 0 {
				m.s.Spray(m.order[st.aim], st.actor)
			}
		}
	}
	return m, nil
}

func (m Model) moveAim(st *seat, delta int) {
	if len(m.order) == 0 {
		return
	}
	st.aim = core.Clamp(st.aim+delta, 0, len(m.order)-1)
	m.s.ObserveControl(st.control, m.controlValue(st.aim))
	m.s.Submit(input.Contribution{Actor: st.actor})
}

func (m Model) controlValue(aim int) float64 {
	if len(m.order) < 2 {
		return 0
	}
	return core.MapRange(float64(aim), 0, float64(len(m.order)-1), 0, controlRange)
}

// Aims returns the node each seated actor is aiming at.
func (m Model) Aims() map[core.ActorID]core.NodeID {
	aims := make(map[core.ActorID]core.NodeID, len(m.seats))
	for _, st := range m.seats {
		if st.aim < len(m.order) {
			aims[st.actor] = m.order[st.aim]
		}
	}
	return aims
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.render()

	dir := filepath.Join(os.Getenv("HOME"), ".firewave", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("drill_%s.txt", time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, the drill continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

func (m Model) render() {
	snap := m.s.Snapshot()
	m.screen.Clear()
	DrawHUD(m.screen, snap, "FIREWAVE DRILL")
	DrawField(m.screen, snap, m.Aims())
	if m.status != "" {
		m.screen.DrawTextCentered(m.screen.Height()-1, m.status, core.ColorRed)
	} else if !snap.Running {
		m.screen.DrawTextCentered(m.screen.Height()-1, "press s or move an aim to start", core.ColorGray)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.render()
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Run starts the drill with the given session.
func Run(s *session.Session, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(s, cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
