package sim

import (
	"github.com/vovakirdan/flappy-arena/internal/config"
)

// Pass records an agent being credited for an obstacle pair.
type Pass struct {
	AgentID int
	PairID  uint64
}

// Termination records an agent leaving the live set.
type Termination struct {
	AgentID int
	Cause   Cause
}

// FrameEvents is everything that happened to the agents during one frame.
// Each slice lists agents in creation order.
type FrameEvents struct {
	Frame      int
	Survived   []int // Agents still alive at the end of the frame
	Passes     []Pass
	Terminated []Termination
}

// World owns the agents and obstacle pairs of one run.
//
// Agents live in a stable arena indexed by ID and are never moved; the live
// set is a separate list of IDs in creation order, compacted at the end of
// each frame.
type World struct {
	cfg       config.Config
	agents    []Agent
	live      []int
	obstacles *Obstacles
	frame     int
	score     int
}

// NewWorld creates a world with population agents at the configured start
// position. seed drives obstacle generation.
func NewWorld(cfg config.Config, population int, seed int64) *World {
	w := &World{
		cfg:       cfg,
		agents:    make([]Agent, population),
		live:      make([]int, population),
		obstacles: NewObstacles(seed, cfg.Field, cfg.Obstacles),
	}
	for i := range w.agents {
		w.agents[i] = NewAgent(i, cfg.Agent.StartX, cfg.Agent.StartY)
		w.live[i] = i
	}
	return w
}

// Config returns the configuration the world was built with.
func (w *World) Config() config.Config { return w.cfg }

// Frame returns the number of frames stepped so far.
func (w *World) Frame() int { return w.frame }

// Score returns the number of pairs passed by at least one agent.
func (w *World) Score() int { return w.score }

// Population returns the number of agents the world started with.
func (w *World) Population() int { return len(w.agents) }

// LiveCount returns the number of agents still alive.
func (w *World) LiveCount() int { return len(w.live) }

// Live returns a copy of the live agent IDs in creation order.
func (w *World) Live() []int {
	ids := make([]int, len(w.live))
	copy(ids, w.live)
	return ids
}

// Agent returns a copy of the agent with the given ID.
func (w *World) Agent(id int) Agent { return w.agents[id] }

// Pairs returns a copy of the live obstacle pairs in left-to-right order.
func (w *World) Pairs() []ObstaclePair {
	pairs := make([]ObstaclePair, w.obstacles.Len())
	copy(pairs, w.obstacles.Pairs())
	return pairs
}

// Observe builds the observation an agent's decision source sees.
func (w *World) Observe(id int) Observation {
	a := w.agents[id]
	pair, ok := w.obstacles.NextUnpassed(a.X)
	return Observation{
		AgentID:     id,
		Frame:       w.frame,
		Y:           a.Y,
		Velocity:    a.Velocity,
		Pair:        pair,
		Placeholder: !ok,
	}
}

// Step advances the world by one frame. flaps is indexed by agent ID; entries
// for terminated agents are ignored, and a short slice means "no flap" for the
// missing IDs.
//
// Order: impulses, gravity, obstacle movement and pruning, spawning, then
// collision and scoring per live agent in creation order, then compaction.
func (w *World) Step(flaps []bool) FrameEvents {
	w.frame++
	ev := FrameEvents{Frame: w.frame}
	phys := w.cfg.Physics

	for _, id := range w.live {
		if id < len(flaps) && flaps[id] {
			w.agents[id].ApplyImpulse(phys.FlapImpulse)
		}
	}
	for _, id := range w.live {
		w.agents[id].Update(phys.Gravity, phys.TerminalVelocity)
	}

	w.obstacles.Advance(w.cfg.Obstacles.Speed)
	w.obstacles.Prune()
	if w.obstacles.ShouldSpawn() {
		w.obstacles.SpawnPair()
	}

	for _, id := range w.live {
		a := &w.agents[id]
		if hit, cause := w.CheckCollision(*a); hit {
			a.Alive = false
			a.Cause = cause
			ev.Terminated = append(ev.Terminated, Termination{AgentID: id, Cause: cause})
			continue
		}
		for _, pairID := range w.CheckScoring(a) {
			ev.Passes = append(ev.Passes, Pass{AgentID: id, PairID: pairID})
		}
		ev.Survived = append(ev.Survived, id)
	}

	kept := w.live[:0]
	for _, id := range w.live {
		if w.agents[id].Alive {
			kept = append(kept, id)
		}
	}
	w.live = kept

	return ev
}

// CheckCollision reports whether the agent is out of bounds or overlaps any
// obstacle segment. Touching edges do not count as overlap.
func (w *World) CheckCollision(a Agent) (bool, Cause) {
	if a.Y <= 0 || a.Y >= w.cfg.Field.Height {
		return true, CauseOutOfBounds
	}

	box := a.Rect(w.cfg.Agent.Width, w.cfg.Agent.Height)
	width := w.obstacles.Width()
	for _, p := range w.obstacles.Pairs() {
		if box.Intersects(p.TopRect(width)) || box.Intersects(p.BottomRect(width, w.cfg.Field.Height)) {
			return true, CauseObstacle
		}
	}
	return false, CauseNone
}

// CheckScoring credits the agent for every pair whose center it has moved
// past since its last check and returns the IDs of the credited pairs.
//
// A pair is evaluated at most once per agent. The first agent to pass a pair
// marks it Scored and raises the world score; under the shared policy only
// that agent is credited.
func (w *World) CheckScoring(a *Agent) []uint64 {
	var credited []uint64
	pairs := w.obstacles.pairs
	for i := range pairs {
		p := &pairs[i]
		if p.ID < a.nextPair {
			continue
		}
		if p.X >= a.X {
			break
		}

		a.nextPair = p.ID + 1
		first := !p.Scored
		if first {
			p.Scored = true
			w.score++
		}
		if first || w.cfg.Scoring != config.ScoringShared {
			a.Passes++
			credited = append(credited, p.ID)
		}
	}
	return credited
}
