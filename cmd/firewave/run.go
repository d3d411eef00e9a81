package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/platform/tui"
	"github.com/vovakirdan/firewave/internal/session"
	"github.com/vovakirdan/firewave/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the drill in the terminal",
	Long: `Start the terminal drill. Two players share the keyboard, each
defending their side of the layout. Moving an aim starts the experience,
like a visitor grabbing a nozzle.

Controls:
  A/D        - Player 1 aim
  W/Space    - Player 1 spray
  Left/Right - Player 2 aim
  Up/Enter   - Player 2 spray
  S          - Start
  X          - Stop
  ?          - Help
  Q/Ctrl+C   - Quit

Examples:
  firewave run
  firewave run --preset gentle
  firewave run --layout ./configs/layout.yaml`,
	Args: cobra.NoArgs,
	Run:  runDrill,
}

func runDrill(_ *cobra.Command, _ []string) {
	if err := drill(); err != nil {
		fail("%v", err)
	}
}

func drill() error {
	st, err := loadSetup()
	if err != nil {
		return err
	}

	// The drill owns the terminal, keep the log quiet
	logger := newLogger()
	logger.SetLevel(log.ErrorLevel)

	opts := session.Options{
		Experience: st.exp,
		Layout:     st.layout,
		Preset:     st.preset,
		Logger:     logger,
	}
	store, storeErr := storage.Open(flagDBPath)
	if storeErr != nil {
		logger.Warn("could not open run history", "error", storeErr)
	} else {
		defer store.Close()
		opts.Saver = store
	}

	s, err := session.New(opts)
	if err != nil {
		return err
	}

	err = tui.Run(s, runtimeConfig())
	s.Close()
	return err
}
