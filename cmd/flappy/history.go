package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-arena/internal/platform/tui"
	"github.com/vovakirdan/flappy-arena/internal/storage"
)

var (
	flagHistoryRun   string
	flagHistoryPrint bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded training runs",
	Long: `Browse the training runs recorded by 'flappy train'.

Without flags an interactive browser lists recent runs and their
per-generation statistics. With --print the generations of one run
(the most recent unless --run is given) are printed as plain text.

Examples:
  flappy history
  flappy history --print
  flappy history --print --run 3f2a9c1e-...`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryRun, "run", "", "Run ID to show")
	historyCmd.Flags().BoolVar(&flagHistoryPrint, "print", false, "Print instead of opening the browser")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	if !flagHistoryPrint {
		width, height := terminalSize()
		return tui.RunHistory(store, flagHistoryRun, width, height)
	}

	runID := flagHistoryRun
	if runID == "" {
		runs, err := store.RecentRuns(1)
		if err != nil {
			return fmt.Errorf("retrieving runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No training runs recorded yet.")
			return nil
		}
		runID = runs[0].RunID
	}

	gens, err := store.Generations(runID)
	if err != nil {
		return fmt.Errorf("retrieving generations: %w", err)
	}

	fmt.Printf("Run %s\n\n", runID)
	fmt.Printf("  %-5s  %-10s  %-10s  %-9s  %-6s  %s\n", "Gen", "Best", "Mean", "StdDev", "Passes", "Frames")
	for _, g := range gens {
		fmt.Printf("  %-5d  %-10.2f  %-10.2f  %-9.2f  %-6d  %d\n",
			g.Generation, g.Best, g.Mean, g.StdDev, g.BestPasses, g.Frames)
	}
	return nil
}
