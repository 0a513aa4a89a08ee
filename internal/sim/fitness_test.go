package sim

import (
	"testing"

	"github.com/vovakirdan/flappy-arena/internal/config"
)

// Binary-exact magnitudes so sums can be compared with ==.
var exactFitness = config.FitnessConfig{Survival: 0.25, PassBonus: 4, TerminalPenalty: 1}

func TestFitnessSurvivorExact(t *testing.T) {
	ft := NewFitnessTracker(2, exactFitness)

	for frame := 1; frame <= 10; frame++ {
		ev := FrameEvents{Frame: frame, Survived: []int{0, 1}}
		if frame == 4 || frame == 9 {
			ev.Passes = []Pass{{AgentID: 0, PairID: uint64(frame)}}
		}
		ft.Apply(ev)
	}

	if got := ft.Score(0); got != 10*0.25+2*4 {
		t.Errorf("Score(0) = %v, expected %v", got, 10*0.25+2*4)
	}
	if got := ft.Score(1); got != 10*0.25 {
		t.Errorf("Score(1) = %v, expected %v", got, 10*0.25)
	}
}

func TestFitnessPenaltyOnce(t *testing.T) {
	ft := NewFitnessTracker(1, exactFitness)
	ft.Apply(FrameEvents{Frame: 1, Survived: []int{0}})
	ft.Apply(FrameEvents{Frame: 2, Terminated: []Termination{{AgentID: 0, Cause: CauseObstacle}}})
	ft.Apply(FrameEvents{Frame: 3, Terminated: []Termination{{AgentID: 0, Cause: CauseObstacle}}})

	if got := ft.Score(0); got != 0.25-1 {
		t.Errorf("Score(0) = %v, expected %v", got, 0.25-1)
	}
}

func TestFitnessScoresAligned(t *testing.T) {
	ft := NewFitnessTracker(3, exactFitness)
	ft.Apply(FrameEvents{
		Frame:      1,
		Survived:   []int{0, 2},
		Passes:     []Pass{{AgentID: 2, PairID: 0}},
		Terminated: []Termination{{AgentID: 1, Cause: CauseOutOfBounds}},
	})

	scores := ft.Scores()
	want := []float64{0.25, -1, 4.25}
	if ft.Len() != 3 || len(scores) != 3 {
		t.Fatalf("Len()=%d len(Scores())=%d, expected 3", ft.Len(), len(scores))
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("Scores()[%d] = %v, expected %v", i, scores[i], want[i])
		}
	}

	scores[0] = 100
	if ft.Score(0) == 100 {
		t.Error("Scores() returned the internal slice")
	}
}

func TestFitnessEmptyPopulation(t *testing.T) {
	ft := NewFitnessTracker(0, exactFitness)
	ft.Apply(FrameEvents{Frame: 1})

	if scores := ft.Scores(); len(scores) != 0 {
		t.Errorf("Scores() = %v, expected empty", scores)
	}
}
