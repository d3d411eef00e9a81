package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/config"
	"github.com/vovakirdan/firewave/internal/platform/tui"
	"github.com/vovakirdan/firewave/internal/storage"
)

var (
	flagHistoryActor int
	flagHistoryLimit int
	flagInteractive  bool
	flagClear        bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Display recently recorded runs, or one actor's results across runs.

Examples:
  firewave history
  firewave history --actor 1
  firewave history --limit 50
  firewave history --interactive
  firewave history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryActor, "actor", 0, "Show results of one actor ID")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Maximum rows to show")
	historyCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse history in a table")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded runs")
}

func runHistory(_ *cobra.Command, _ []string) {
	if err := history(); err != nil {
		fail("%v", err)
	}
}

// history keeps the store open until every path has returned.
func history() error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearRuns(); err != nil {
			return err
		}
		fmt.Println("Run history cleared.")
		return nil
	case flagInteractive:
		cfg := runtimeConfig()
		return tui.RunHistory(store, actorViews(), cfg.ScreenW, cfg.ScreenH)
	case flagHistoryActor != 0:
		return printActorHistory(store, flagHistoryActor)
	default:
		return printRecentRuns(store)
	}
}

// actorViews lists the configured actors as history tabs.
func actorViews() []tui.HistoryView {
	exp, err := config.LoadExperience(flagConfig)
	if err != nil {
		return nil
	}
	views := make([]tui.HistoryView, 0, len(exp.Actors))
	for _, a := range exp.Actors {
		views = append(views, tui.HistoryView{Title: a.Name, Actor: a.ID})
	}
	return views
}

func printRecentRuns(store *storage.Store) error {
	runs, err := store.RecentRuns(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}

	fmt.Println("Recent runs")
	fmt.Println()
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'firewave run' or 'firewave simulate' to record the first one!")
		return nil
	}

	fmt.Printf("  %-16s  %-10s  %-6s  %7s  %-8s\n", "Date", "Outcome", "Waves", "Time", "Preset")
	fmt.Printf("  %-16s  %-10s  %-6s  %7s  %-8s\n", "----", "-------", "-----", "----", "------")
	for _, r := range runs {
		fmt.Printf("  %-16s  %-10s  %-6s  %6.0fs  %-8s\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Outcome,
			fmt.Sprintf("%d/%d", r.WavesCompleted, r.Waves), r.Duration, r.Preset)
	}

	if stats, err := store.Stats(); err == nil {
		fmt.Println()
		fmt.Printf("Runs: %d  finished: %d  avg time: %.0fs  best efficiency: %.1f  fires cleared: %d\n",
			stats.Runs, stats.Finished, stats.AvgDuration, stats.BestEfficiency, stats.TotalFires)
	}
	return nil
}

func printActorHistory(store *storage.Store, actor int) error {
	results, err := store.ActorHistory(actor, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}

	fmt.Printf("Results of P%d\n", actor)
	fmt.Println()
	if len(results) == 0 {
		fmt.Println("No results recorded for this actor.")
		return nil
	}

	fmt.Printf("  %-16s  %-12s  %6s  %8s  %7s\n", "Date", "Level", "Eff", "Sprayed", "Cleared")
	fmt.Printf("  %-16s  %-12s  %6s  %8s  %7s\n", "----", "-----", "---", "-------", "-------")
	for _, r := range results {
		fmt.Printf("  %-16s  %-12s  %6.1f  %8.0f  %7d\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.Level, r.Efficiency, r.Extinguished, r.FiresCleared)
	}
	return nil
}
