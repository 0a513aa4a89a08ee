package evolve

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/sim"
	"github.com/vovakirdan/flappy-arena/internal/storage"
	"github.com/vovakirdan/flappy-arena/internal/telemetry"
)

func smallConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Training.Population = 6
	cfg.Training.Generations = 3
	cfg.Training.Elite = 1
	cfg.Training.MaxFrames = 300
	return cfg
}

type memRecorder struct {
	runs []storage.Run
	gens []storage.Generation
	fail error
}

func (m *memRecorder) SaveRun(run storage.Run) (int64, error) {
	m.runs = append(m.runs, run)
	return int64(len(m.runs)), nil
}

func (m *memRecorder) SaveGeneration(g storage.Generation) error {
	if m.fail != nil {
		return m.fail
	}
	m.gens = append(m.gens, g)
	return nil
}

func TestTrainerRun(t *testing.T) {
	rec := &memRecorder{}
	var logs bytes.Buffer
	trainer := NewTrainer(smallConfig(), 11, TrainerOptions{
		Logger:   log.New(&logs),
		Recorder: rec,
	})

	summary, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(summary.Generations) != 3 {
		t.Fatalf("ran %d generations, expected 3", len(summary.Generations))
	}
	for i, g := range summary.Generations {
		if len(g.Result.Fitness) != 6 {
			t.Errorf("generation %d: len(Fitness) = %d, expected 6", i, len(g.Result.Fitness))
		}
		if g.Result.Frames > 300 {
			t.Errorf("generation %d ran %d frames past the cap", i, g.Result.Frames)
		}
	}
	if summary.Best == nil {
		t.Fatal("Summary.Best is nil")
	}
	for _, g := range summary.Generations {
		if g.Stats.Best > summary.BestFitness {
			t.Errorf("BestFitness %v is below generation best %v", summary.BestFitness, g.Stats.Best)
		}
	}

	if len(rec.runs) != 1 || rec.runs[0].RunID != summary.RunID || rec.runs[0].Population != 6 {
		t.Errorf("recorded runs = %+v", rec.runs)
	}
	if len(rec.gens) != 3 || rec.gens[2].Generation != 2 {
		t.Errorf("recorded generations = %+v", rec.gens)
	}
	if !strings.Contains(logs.String(), "training finished") {
		t.Errorf("log output missing summary line:\n%s", logs.String())
	}
}

func TestTrainerDeterministic(t *testing.T) {
	run := func() *Summary {
		s, err := NewTrainer(smallConfig(), 5, TrainerOptions{}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		return s
	}

	a, b := run(), run()
	for i := range a.Generations {
		if a.Generations[i].Stats != b.Generations[i].Stats {
			t.Errorf("generation %d stats differ: %+v vs %+v", i, a.Generations[i].Stats, b.Generations[i].Stats)
		}
	}
	if a.RunID == b.RunID {
		t.Error("two runs share a run ID")
	}
}

func TestTrainerTargetFitness(t *testing.T) {
	cfg := smallConfig()
	cfg.Training.Generations = 10
	// Every policy survives at least 37 frames, so generation 0 already qualifies.
	cfg.Training.TargetFitness = 1

	summary, err := NewTrainer(cfg, 1, TrainerOptions{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(summary.Generations) != 1 {
		t.Errorf("ran %d generations, expected to stop after the first", len(summary.Generations))
	}
}

func TestTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewTrainer(smallConfig(), 1, TrainerOptions{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, expected context.Canceled", err)
	}
	if summary == nil || len(summary.Generations) != 0 {
		t.Errorf("summary = %+v, expected no completed generations", summary)
	}
}

func TestTrainerRecorderError(t *testing.T) {
	rec := &memRecorder{fail: errors.New("disk full")}

	_, err := NewTrainer(smallConfig(), 1, TrainerOptions{Recorder: rec}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Run() error = %v, expected the recorder error", err)
	}
}

func TestTrainerWithStoreAndOutput(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(filepath.Join(dir, "train.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	out, err := telemetry.NewOutputManager(filepath.Join(dir, "csv"))
	if err != nil {
		t.Fatalf("NewOutputManager() failed: %v", err)
	}

	frames := 0
	sink := sim.RenderFunc(func(sim.Frame) { frames++ })
	summary, err := NewTrainer(smallConfig(), 3, TrainerOptions{Recorder: store, Output: out, Sink: sink}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	gens, err := store.Generations(summary.RunID)
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(gens) != 3 {
		t.Errorf("stored %d generations, expected 3", len(gens))
	}

	total := 0
	for _, g := range summary.Generations {
		total += g.Result.Frames
	}
	if frames != total {
		t.Errorf("sink saw %d frames, expected %d", frames, total)
	}

	for _, name := range []string{"generations.csv", "agents.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, "csv", name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}
}

func TestTrainerBestReplaysOnItsOwnCourse(t *testing.T) {
	cfg := smallConfig()
	cfg.Training.Generations = 4
	const seed = 21

	summary, err := NewTrainer(cfg, seed, TrainerOptions{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	best := summary.Generations[summary.BestGen]
	if best.Stats.Best != summary.BestFitness {
		t.Fatalf("generation %d best = %v, expected BestFitness %v", summary.BestGen, best.Stats.Best, summary.BestFitness)
	}
	if want := int64(seed + summary.BestGen); summary.BestSeed != want {
		t.Errorf("BestSeed = %d, expected %d", summary.BestSeed, want)
	}

	// Flying the best network alone on that course earns the same fitness.
	res := sim.RunGeneration(context.Background(), cfg, []sim.Policy{summary.Best}, sim.Options{
		Seed:      summary.BestSeed,
		MaxFrames: cfg.Training.MaxFrames,
	})
	if res.Fitness[0] != summary.BestFitness {
		t.Errorf("replayed fitness = %v, expected %v", res.Fitness[0], summary.BestFitness)
	}
}
