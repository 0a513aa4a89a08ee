// Package sim implements the multi-agent simulation and fitness-scoring engine.
//
// A World advances every agent and obstacle pair one fixed frame at a time.
// A Loop queries one DecisionSource per live agent per frame, steps the World,
// feeds the resulting events to a FitnessTracker and hands a Frame to an
// optional RenderSink. Nothing in this package blocks, sleeps or logs; pacing,
// drawing and persistence belong to the callers.
package sim

import "github.com/vovakirdan/flappy-arena/internal/core"

// Cause describes why an agent was terminated.
type Cause int

const (
	CauseNone        Cause = iota
	CauseObstacle          // Hit the top or bottom segment of a pair
	CauseOutOfBounds       // Reached the top or bottom play-field bound
)

// String returns a human-readable name for the cause.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseObstacle:
		return "obstacle"
	case CauseOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// Agent is one simulated bird. Only Y and Velocity change while it is alive.
type Agent struct {
	ID       int     // Index into the population; correlates decision source and fitness entry
	X, Y     float64 // Center position
	Velocity float64 // Vertical velocity (positive = down)
	Alive    bool
	Cause    Cause // Set once, on termination
	Passes   int   // Obstacle pairs credited to this agent

	nextPair uint64 // ID of the first pair this agent has not passed yet
}

// NewAgent creates a live agent at rest.
func NewAgent(id int, x, y float64) Agent {
	return Agent{ID: id, X: x, Y: y, Alive: true}
}

// Update applies one frame of gravity, capping the downward velocity, then moves the agent.
func (a *Agent) Update(gravity, terminalVelocity float64) {
	a.Velocity += gravity
	if a.Velocity > terminalVelocity {
		a.Velocity = terminalVelocity
	}
	a.Y += a.Velocity
}

// ApplyImpulse sets the velocity to strength. It overrides rather than adds.
func (a *Agent) ApplyImpulse(strength float64) {
	a.Velocity = strength
}

// Rect returns the agent's w×h bounding box.
func (a Agent) Rect(w, h float64) core.Rect {
	return core.RectFromCenter(a.X, a.Y, w, h)
}
