package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/session"
)

// SSHServerConfig holds configuration for the SSH dashboard.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.firewave/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// RefreshRate is how many times per second the dashboard redraws.
	RefreshRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		RefreshRate: 10,
	}
}

// LiveSource provides snapshots of a running session and accepts control
// commands. *session.Runner implements it.
type LiveSource interface {
	Snapshot() session.Snapshot
	Send(cmd session.Command)
}

// SSHServer wraps a Wish SSH server showing the live session.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	src    LiveSource
	logger *log.Logger
}

// NewSSHServer creates a new SSH dashboard server.
func NewSSHServer(cfg SSHServerConfig, src LiveSource, logger *log.Logger) (*SSHServer, error) {
	srv := &SSHServer{
		config: cfg,
		src:    src,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".firewave", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a dashboard for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewDashboardModel(s.src, pty.Window.Width, pty.Window.Height, s.config.RefreshRate)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("dashboard session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("dashboard session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH dashboard", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// DashboardKeyMap defines the operator keys of the dashboard.
type DashboardKeyMap struct {
	Start key.Binding
	Stop  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k DashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k DashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DashboardModel shows a live session read-only, with start/stop controls.
type DashboardModel struct {
	src      LiveSource
	screen   *core.Screen
	rate     int
	keys     DashboardKeyMap
	help     help.Model
	snap     session.Snapshot
	quitting bool
}

// NewDashboardModel creates a dashboard refreshing rate times per second.
func NewDashboardModel(src LiveSource, width, height, rate int) DashboardModel {
	return DashboardModel{
		src:    src,
		screen: core.NewScreen(width, max(1, height-1)),
		rate:   max(1, rate),
		keys: DashboardKeyMap{
			Start: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
			Stop:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
			Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		help: help.New(),
		snap: src.Snapshot(),
	}
}

// Init starts the refresh loop.
func (m DashboardModel) Init() tea.Cmd {
	return tickCmd(m.rate)
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			m.src.Send(session.StartCmd{})
		case key.Matches(msg, m.keys.Stop):
			m.src.Send(session.StopCmd{Reason: events.StopReasonManual})
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, max(1, msg.Height-1))
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		m.snap = m.src.Snapshot()
		return m, tickCmd(m.rate)
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	DrawHUD(m.screen, m.snap, fmt.Sprintf("FIREWAVE LIVE  tick %d", m.snap.Tick))
	DrawField(m.screen, m.snap, nil)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}
