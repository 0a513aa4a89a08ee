package evolve

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/sim"
	"github.com/vovakirdan/flappy-arena/internal/storage"
	"github.com/vovakirdan/flappy-arena/internal/telemetry"
)

// Recorder persists training statistics. *storage.Store implements it.
type Recorder interface {
	SaveRun(run storage.Run) (int64, error)
	SaveGeneration(g storage.Generation) error
}

// TrainerOptions configures a Trainer. Every field is optional.
type TrainerOptions struct {
	Logger   *log.Logger
	Recorder Recorder
	Output   *telemetry.OutputManager
	Sink     sim.RenderSink // Observes every frame of every generation
}

// GenerationResult is the outcome of one evaluated generation.
type GenerationResult struct {
	Generation int
	Stats      Stats
	BestPasses int
	Result     sim.Result
}

// Summary is the outcome of a training run.
type Summary struct {
	RunID       string
	Generations []GenerationResult
	Best        *Network // Fittest network seen in any generation
	BestFitness float64
	BestGen     int   // Generation Best was scored in
	BestSeed    int64 // Obstacle seed of BestGen; replaying with it flies the same course
}

// Trainer evaluates a population generation by generation in the simulation
// and evolves it from the returned fitness.
type Trainer struct {
	cfg  config.Config
	seed int64
	opts TrainerOptions
	log  *log.Logger
}

// NewTrainer creates a trainer. seed drives both obstacle generation and breeding.
func NewTrainer(cfg config.Config, seed int64, opts TrainerOptions) *Trainer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Trainer{cfg: cfg, seed: seed, opts: opts, log: logger}
}

// Run trains for cfg.Training.Generations generations, or until the target
// fitness is reached or ctx is cancelled. A cancelled run returns the summary
// of the generations completed so far together with ctx.Err().
func (t *Trainer) Run(ctx context.Context) (*Summary, error) {
	tc := t.cfg.Training
	summary := &Summary{RunID: uuid.NewString()}
	logger := t.log.With("run", summary.RunID[:8])

	if t.opts.Recorder != nil {
		run := storage.Run{
			RunID:      summary.RunID,
			Population: tc.Population,
			Seed:       t.seed,
			Scoring:    string(t.cfg.Scoring),
		}
		if _, err := t.opts.Recorder.SaveRun(run); err != nil {
			return summary, fmt.Errorf("evolve: recording run: %w", err)
		}
	}
	if err := t.opts.Output.WriteConfig(&t.cfg); err != nil {
		return summary, fmt.Errorf("evolve: %w", err)
	}

	logger.Info("training started",
		"population", tc.Population,
		"generations", tc.Generations,
		"scoring", t.cfg.Scoring,
		"seed", t.seed)

	pop := NewPopulation(tc, t.cfg.Field.Height, t.seed)
	for gen := 0; gen < tc.Generations; gen++ {
		opts := sim.Options{
			Seed:      t.seed + int64(gen),
			MaxFrames: tc.MaxFrames,
			Sink:      t.opts.Sink,
		}
		res := sim.RunGeneration(ctx, t.cfg, pop.Policies(), opts)
		if err := ctx.Err(); err != nil {
			logger.Warn("training interrupted", "generation", gen, "frames", res.Frames)
			return summary, err
		}

		gr := GenerationResult{Generation: gen, Stats: ComputeStats(res.Fitness), Result: res}
		if gr.Stats.BestIndex >= 0 {
			gr.BestPasses = res.Passes[gr.Stats.BestIndex]
			if summary.Best == nil || gr.Stats.Best > summary.BestFitness {
				summary.Best = pop.Networks[gr.Stats.BestIndex].Clone()
				summary.BestFitness = gr.Stats.Best
				summary.BestGen = gen
				summary.BestSeed = opts.Seed
			}
		}
		summary.Generations = append(summary.Generations, gr)

		logger.Info("generation",
			"gen", gen,
			"best", fmt.Sprintf("%.2f", gr.Stats.Best),
			"mean", fmt.Sprintf("%.2f", gr.Stats.Mean),
			"passes", gr.BestPasses,
			"frames", res.Frames,
			"end", res.Reason)

		if err := t.record(summary.RunID, gr); err != nil {
			return summary, err
		}

		if tc.TargetFitness > 0 && gr.Stats.Best >= tc.TargetFitness {
			logger.Info("target fitness reached", "gen", gen, "best", gr.Stats.Best)
			break
		}
		if gen < tc.Generations-1 {
			if err := pop.Evolve(res.Fitness); err != nil {
				return summary, err
			}
		}
	}

	logger.Info("training finished", "generations", len(summary.Generations), "best", summary.BestFitness)
	return summary, nil
}

// record stores one generation in the database and the CSV output.
func (t *Trainer) record(runID string, gr GenerationResult) error {
	if t.opts.Recorder != nil {
		g := storage.Generation{
			RunID:      runID,
			Generation: gr.Generation,
			Best:       gr.Stats.Best,
			Mean:       gr.Stats.Mean,
			StdDev:     gr.Stats.StdDev,
			BestPasses: gr.BestPasses,
			Frames:     gr.Result.Frames,
		}
		if err := t.opts.Recorder.SaveGeneration(g); err != nil {
			return fmt.Errorf("evolve: %w", err)
		}
	}

	out := t.opts.Output
	if out == nil {
		return nil
	}
	rec := telemetry.GenerationRecord{
		RunID:      runID,
		Generation: gr.Generation,
		Best:       gr.Stats.Best,
		Mean:       gr.Stats.Mean,
		StdDev:     gr.Stats.StdDev,
		BestPasses: gr.BestPasses,
		Score:      gr.Result.Score,
		Frames:     gr.Result.Frames,
		Reason:     gr.Result.Reason.String(),
	}
	if err := out.WriteGeneration(rec); err != nil {
		return fmt.Errorf("evolve: %w", err)
	}

	agents := make([]telemetry.AgentRecord, len(gr.Result.Fitness))
	for i, f := range gr.Result.Fitness {
		agents[i] = telemetry.AgentRecord{
			Generation: gr.Generation,
			Agent:      i,
			Fitness:    f,
			Passes:     gr.Result.Passes[i],
		}
	}
	if err := out.WriteAgents(agents); err != nil {
		return fmt.Errorf("evolve: %w", err)
	}
	return nil
}
