package sim

import "github.com/vovakirdan/flappy-arena/internal/config"

// FitnessTracker accumulates one fitness value per agent from frame events.
//
// Each surviving frame adds the survival reward, each credited pass adds the
// pass bonus, and termination subtracts the penalty exactly once.
type FitnessTracker struct {
	cfg       config.FitnessConfig
	scores    []float64
	penalized []bool
}

// NewFitnessTracker creates a tracker for population agents, all at zero.
func NewFitnessTracker(population int, cfg config.FitnessConfig) *FitnessTracker {
	return &FitnessTracker{
		cfg:       cfg,
		scores:    make([]float64, population),
		penalized: make([]bool, population),
	}
}

// Apply folds one frame's events into the scores.
func (t *FitnessTracker) Apply(ev FrameEvents) {
	for _, id := range ev.Survived {
		t.scores[id] += t.cfg.Survival
	}
	for _, p := range ev.Passes {
		t.scores[p.AgentID] += t.cfg.PassBonus
	}
	for _, term := range ev.Terminated {
		if t.penalized[term.AgentID] {
			continue
		}
		t.penalized[term.AgentID] = true
		t.scores[term.AgentID] -= t.cfg.TerminalPenalty
	}
}

// Score returns the fitness of one agent.
func (t *FitnessTracker) Score(id int) float64 {
	return t.scores[id]
}

// Len returns the population size.
func (t *FitnessTracker) Len() int {
	return len(t.scores)
}

// Scores returns a copy of all fitness values, indexed by agent ID.
func (t *FitnessTracker) Scores() []float64 {
	out := make([]float64, len(t.scores))
	copy(out, t.scores)
	return out
}
