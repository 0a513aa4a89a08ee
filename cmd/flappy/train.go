package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-arena/internal/evolve"
	"github.com/vovakirdan/flappy-arena/internal/platform/tui"
	"github.com/vovakirdan/flappy-arena/internal/storage"
	"github.com/vovakirdan/flappy-arena/internal/telemetry"
)

var (
	flagGenerations int
	flagPopulation  int
	flagMaxFrames   int
	flagOutDir      string
	flagReplay      bool
	flagNoDB        bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a population of policies",
	Long: `Run generations of agents that share one world. Each generation is scored
with the fitness model, then the next generation is bred from the fittest
networks by elitism, tournament selection and gaussian mutation.

Generation statistics are recorded in the scores database (see 'flappy history')
and, with --out, written as CSV files next to the effective config.

Examples:
  flappy train
  flappy train --generations 100 --population 200
  flappy train --out ./runs/today --seed 7
  flappy train --replay`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Number of generations (0 = use config)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", 0, "Agents per generation (0 = use config)")
	trainCmd.Flags().IntVar(&flagMaxFrames, "max-frames", -1, "Frame cap per generation (-1 = use config, 0 = none)")
	trainCmd.Flags().StringVar(&flagOutDir, "out", "", "Directory for CSV output (disabled if empty)")
	trainCmd.Flags().BoolVar(&flagReplay, "replay", false, "Fly the best network in the terminal after training")
	trainCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record the run in the database")
}

func runTrain(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagGenerations > 0 {
		cfg.Training.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		cfg.Training.Population = flagPopulation
	}
	if flagMaxFrames >= 0 {
		cfg.Training.MaxFrames = flagMaxFrames
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger("train")

	opts := evolve.TrainerOptions{Logger: logger}
	if !flagNoDB {
		store, openErr := storage.Open(flagDBPath)
		if openErr != nil {
			logger.Warn("could not open scores database, run will not be recorded", "error", openErr)
		} else {
			defer store.Close()
			opts.Recorder = store
		}
	}

	out, err := telemetry.NewOutputManager(flagOutDir)
	if err != nil {
		return err
	}
	defer out.Close()
	opts.Output = out

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := evolve.NewTrainer(cfg, seed, opts).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("Run %s: %d generations, best fitness %.2f (generation %d)\n",
		summary.RunID, len(summary.Generations), summary.BestFitness, summary.BestGen)
	if out != nil {
		fmt.Printf("CSV output written to %s\n", out.Dir())
	}

	if !flagReplay || summary.Best == nil || ctx.Err() != nil {
		return nil
	}

	// Replay on the course the network earned its fitness on.
	cfg.Seed = summary.BestSeed
	width, height := terminalSize()
	return tui.Run(tui.Options{
		Config: cfg,
		Policy: summary.Best,
		Width:  width,
		Height: height,
	})
}
