// firewave runs the interactive fire-fighting experience: a wave scheduler
// igniting fires on a graph of fire points that players put out together.
//
// Usage:
//
//	firewave run              - Play the drill in the terminal (two players, one keyboard)
//	firewave simulate         - Run a headless experience with scripted actors
//	firewave serve            - Run a live session with websocket feed, metrics and SSH dashboard
//	firewave history          - Show recorded runs
//	firewave layout           - Print and validate the fire layout
//	firewave drivers          - List scripted actor drivers
//
// Global flags:
//
//	--tick-rate <hz>   - Simulation ticks per second (default: 30)
//	--seed <value>     - Fire selection seed (0 = from config)
//	--db <path>        - Run history database (default: ~/.firewave/runs.db)
//	--config <path>    - Experience YAML
//	--layout <path>    - Layout YAML
//	--preset <name>    - Difficulty preset: gentle, standard, intense, fixed
//	--log-level <lvl>  - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/core"

	// Import drivers to register them
	_ "github.com/vovakirdan/firewave/internal/drivers/bot"
)

var (
	// Global flags
	flagTickRate int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLayout   string
	flagPreset   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "firewave",
	Short: "Firewave - cooperative fire-fighting experience",
	Long: `Firewave drives an interactive fire-fighting installation: fires ignite
in waves, spread along the layout and grow back unless players keep spraying.
Each wave adapts to how well every player did in the previous one.

Available commands:
  run       - Terminal drill, two players on one keyboard
  simulate  - Headless run with scripted actors
  serve     - Live session with websocket feed, /metrics and SSH dashboard
  history   - Recorded runs and per-player results
  layout    - Print and validate the fire layout
  drivers   - List scripted actor drivers

Examples:
  firewave run
  firewave simulate --drivers steady,erratic
  firewave serve --http :8080 --ssh :23234
  firewave history --actor 1
  firewave layout --layout ./configs/layout.yaml`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagTickRate, "tick-rate", 30, "Simulation ticks per second")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Fire selection seed (0 = use config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.firewave/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom experience YAML")
	rootCmd.PersistentFlags().StringVar(&flagLayout, "layout", "", "Path to custom layout YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Difficulty preset: gentle, standard, intense, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(driversCmd)
}

// fail prints an error the way every subcommand reports it and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// newLogger builds the process logger from --log-level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "firewave",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// setup holds the resolved configuration of a command.
type setup struct {
	exp    config.Experience
	layout config.Layout
	preset config.Preset
}

// loadSetup resolves experience, layout and preset from the global flags.
func loadSetup() (setup, error) {
	preset, err := config.ParsePreset(flagPreset)
	if err != nil {
		return setup{}, err
	}
	exp, err := config.LoadExperience(flagConfig)
	if err != nil {
		return setup{}, err
	}
	layout, err := config.LoadLayout(flagLayout)
	if err != nil {
		return setup{}, err
	}
	config.ApplyPreset(&exp, preset)
	if flagSeed != 0 {
		exp.Waves.Seed = flagSeed
	}
	if err := exp.ValidateFor(layout); err != nil {
		return setup{}, err
	}
	return setup{exp: exp, layout: layout, preset: preset}, nil
}

// runtimeConfig sizes the drill screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = max(1, flagTickRate)
	cfg.Seed = flagSeed
	return cfg
}
