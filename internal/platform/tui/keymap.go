package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// PlayerKeys are one player's aim and spray controls.
type PlayerKeys struct {
	Left  key.Binding
	Right key.Binding
	Spray key.Binding
}

// DrillKeyMap defines the key bindings of the drill.
type DrillKeyMap struct {
	P1    PlayerKeys
	P2    PlayerKeys
	Start key.Binding
	Stop  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k DrillKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.P1.Spray, k.P2.Spray, k.Start, k.Stop, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k DrillKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.P1.Left, k.P1.Right, k.P1.Spray},
		{k.P2.Left, k.P2.Right, k.P2.Spray},
		{k.Start, k.Stop, k.Help, k.Quit},
	}
}

// DefaultDrillKeyMap returns default key bindings. Player 1 plays on the
// left of the keyboard, player 2 on the arrows.
func DefaultDrillKeyMap() DrillKeyMap {
	return DrillKeyMap{
		P1: PlayerKeys{
			Left:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "P1 aim left")),
			Right: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "P1 aim right")),
			Spray: key.NewBinding(key.WithKeys("w", " "), key.WithHelp("w", "P1 spray")),
		},
		P2: PlayerKeys{
			Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "P2 aim left")),
			Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "P2 aim right")),
			Spray: key.NewBinding(key.WithKeys("up", "enter"), key.WithHelp("↑", "P2 spray")),
		},
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// player returns the keys of an actor, if the keyboard has a seat for it.
func (k DrillKeyMap) player(i int) (PlayerKeys, bool) {
	switch i {
	case 0:
		return k.P1, true
	case 1:
		return k.P2, true
	}
	return PlayerKeys{}, false
}
