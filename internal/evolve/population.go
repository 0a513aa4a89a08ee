package evolve

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/sim"
)

// Population is one generation of networks plus the RNG that breeds the next.
type Population struct {
	Networks []*Network

	cfg        config.TrainingConfig
	rng        *rand.Rand
	generation int
}

// NewPopulation creates cfg.Population random networks sized for the
// simulation's observation vector.
func NewPopulation(cfg config.TrainingConfig, inputScale float64, seed int64) *Population {
	rng := rand.New(rand.NewSource(seed))
	nets := make([]*Network, cfg.Population)
	for i := range nets {
		nets[i] = NewNetwork(rng, sim.ObservationSize, cfg.Hidden, inputScale)
	}
	return &Population{Networks: nets, cfg: cfg, rng: rng}
}

// Generation returns how many times the population has been evolved.
func (p *Population) Generation() int { return p.generation }

// Len returns the population size.
func (p *Population) Len() int { return len(p.Networks) }

// Policies returns the networks as simulation policies, in population order.
func (p *Population) Policies() []sim.Policy {
	policies := make([]sim.Policy, len(p.Networks))
	for i, n := range p.Networks {
		policies[i] = n
	}
	return policies
}

// Evolve replaces the population with the next generation. The elite
// networks are carried over unchanged; every other slot is a mutated clone
// of a tournament-selected parent.
func (p *Population) Evolve(fitness []float64) error {
	if len(fitness) != len(p.Networks) {
		return fmt.Errorf("evolve: got %d fitness values for %d networks", len(fitness), len(p.Networks))
	}
	if len(p.Networks) == 0 {
		p.generation++
		return nil
	}

	ranked := rank(fitness)
	next := make([]*Network, 0, len(p.Networks))

	elite := p.cfg.Elite
	if elite > len(ranked) {
		elite = len(ranked)
	}
	for _, idx := range ranked[:elite] {
		next = append(next, p.Networks[idx].Clone())
	}

	for len(next) < len(p.Networks) {
		parent := p.tournament(fitness)
		child := p.Networks[parent].Clone()
		child.Mutate(p.rng, p.cfg.MutationRate, p.cfg.MutationSigma)
		next = append(next, child)
	}

	p.Networks = next
	p.generation++
	return nil
}

// tournament samples cfg.Tournament networks and returns the index of the fittest.
func (p *Population) tournament(fitness []float64) int {
	size := p.cfg.Tournament
	if size <= 0 {
		size = 3
	}
	if size > len(fitness) {
		size = len(fitness)
	}

	best := p.rng.Intn(len(fitness))
	for i := 1; i < size; i++ {
		candidate := p.rng.Intn(len(fitness))
		if fitness[candidate] > fitness[best] {
			best = candidate
		}
	}
	return best
}

// rank returns population indices ordered by descending fitness.
// Ties keep population order.
func rank(fitness []float64) []int {
	idx := make([]int, len(fitness))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fitness[idx[a]] > fitness[idx[b]]
	})
	return idx
}

// Stats summarizes the fitness of one generation.
type Stats struct {
	Best      float64
	BestIndex int
	Mean      float64
	StdDev    float64
}

// ComputeStats returns best, mean and sample standard deviation of fitness.
// An empty slice yields zero Stats with BestIndex -1.
func ComputeStats(fitness []float64) Stats {
	if len(fitness) == 0 {
		return Stats{BestIndex: -1}
	}

	best := floats.MaxIdx(fitness)
	mean, std := stat.MeanStdDev(fitness, nil)
	if len(fitness) == 1 || math.IsNaN(std) {
		std = 0
	}
	return Stats{
		Best:      fitness[best],
		BestIndex: best,
		Mean:      mean,
		StdDev:    std,
	}
}
