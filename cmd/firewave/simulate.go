package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/events"
	"github.com/vovakirdan/firewave/internal/registry"
	"github.com/vovakirdan/firewave/internal/session"
	"github.com/vovakirdan/firewave/internal/storage"
)

var (
	flagDrivers []string
	flagMaxTime float64
	flagNoSave  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless experience with scripted actors",
	Long: `Run a complete experience as fast as possible with scripted actors
and print a summary. Drivers are assigned to actors in configuration order;
the last driver repeats for remaining actors.

Examples:
  firewave simulate
  firewave simulate --drivers steady,erratic
  firewave simulate --drivers idle --max-time 120
  firewave simulate --preset intense --seed 42 --no-save`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringSliceVar(&flagDrivers, "drivers", []string{"steady"}, "Driver per actor (see 'firewave drivers')")
	simulateCmd.Flags().Float64Var(&flagMaxTime, "max-time", 900, "Simulation seconds before giving up")
	simulateCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run")
}

func runSimulate(_ *cobra.Command, _ []string) {
	if err := simulate(); err != nil {
		fail("%v", err)
	}
}

func simulate() error {
	st, err := loadSetup()
	if err != nil {
		return err
	}
	logger := newLogger()

	opts := session.Options{
		Experience: st.exp,
		Layout:     st.layout,
		Preset:     st.preset,
		Logger:     logger,
	}
	if !flagNoSave {
		store, storeErr := storage.Open(flagDBPath)
		if storeErr != nil {
			logger.Warn("could not open run history", "error", storeErr)
		} else {
			defer store.Close()
			opts.Saver = store
		}
	}

	s, err := session.New(opts)
	if err != nil {
		return err
	}

	cfg := runtimeConfig()
	crew, err := registry.NewCrew(s, cfg.StepSeconds(), st.exp.Waves.Seed, flagDrivers...)
	if err != nil {
		return err
	}

	if err := s.StartExperience(); err != nil {
		return err
	}
	maxTicks := int(flagMaxTime * float64(cfg.TickRate))
	for i := 0; i < maxTicks && s.Scheduler().State().Running(); i++ {
		crew.Step()
	}
	if s.Scheduler().State().Running() {
		logger.Warn("time limit reached, stopping", "seconds", flagMaxTime)
		s.StopExperience(events.StopReasonManual)
	}
	s.Close()

	run, ok := s.LastRun()
	if !ok {
		return errors.New("no run recorded")
	}
	printRun(run)
	return nil
}

func printRun(run session.RunResult) {
	fmt.Printf("Run %s (%s, preset %s)\n", run.RunID, run.Layout, run.Preset)
	fmt.Printf("Outcome: %s  waves %d/%d  time %.1fs\n", run.Outcome, run.WavesCompleted, run.Waves, run.Duration)
	fmt.Println()

	fmt.Printf("  %-4s  %-12s  %-12s  %8s  %8s  %7s\n", "ID", "Name", "Level", "Eff", "Sprayed", "Cleared")
	fmt.Printf("  %-4s  %-12s  %-12s  %8s  %8s  %7s\n", "--", "----", "-----", "---", "-------", "-------")
	for _, a := range run.Actors {
		name := a.Name
		if !a.Active {
			name += "*"
		}
		fmt.Printf("  P%-3d  %-12s  %-12s  %8.1f  %8.0f  %7d\n",
			a.Actor, truncate(name, 12), a.Level, a.Efficiency, a.Extinguished, a.FiresCleared)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "."
}
