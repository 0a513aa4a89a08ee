package sim

import (
	"context"

	"github.com/vovakirdan/flappy-arena/internal/config"
)

// Mode selects how a loop ends and whether fitness is tracked.
type Mode int

const (
	ModeTraining Mode = iota // Many agents; ends when all are terminated
	ModeHuman                // One agent; ends when it is terminated
)

// State is the loop lifecycle state.
type State int

const (
	StateRunning State = iota
	StateEnded
)

// EndReason explains why a loop ended.
type EndReason int

const (
	EndNone EndReason = iota
	EndAllTerminated
	EndAgentTerminated
	EndStopped
)

// String returns a human-readable name for the reason.
func (r EndReason) String() string {
	switch r {
	case EndNone:
		return "none"
	case EndAllTerminated:
		return "all_terminated"
	case EndAgentTerminated:
		return "agent_terminated"
	case EndStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options tune a Loop.
type Options struct {
	Mode      Mode
	Seed      int64      // Obstacle RNG seed
	MaxFrames int        // Stop after this many frames (0 = no cap)
	Sink      RenderSink // Optional, receives a Frame after every step
}

// Result summarizes a finished loop.
type Result struct {
	Fitness []float64 // Indexed by agent ID; nil in human mode
	Passes  []int     // Pairs credited per agent, indexed by agent ID
	Score   int       // Pairs passed by at least one agent
	Frames  int
	Reason  EndReason
}

// Loop drives one World frame by frame, consulting one DecisionSource per agent.
type Loop struct {
	world   *World
	sources []DecisionSource
	tracker *FitnessTracker
	opts    Options
	flaps   []bool
	state   State
	reason  EndReason
	stopped bool
}

// NewLoop creates a running loop with one agent per decision source.
// sources[i] decides for agent i.
func NewLoop(cfg config.Config, sources []DecisionSource, opts Options) *Loop {
	l := &Loop{
		world:   NewWorld(cfg, len(sources), opts.Seed),
		sources: sources,
		opts:    opts,
		flaps:   make([]bool, len(sources)),
	}
	if opts.Mode == ModeTraining {
		l.tracker = NewFitnessTracker(len(sources), cfg.Fitness)
	}
	return l
}

// World returns the simulated world. Callers must treat it as read-only.
func (l *Loop) World() *World { return l.world }

// State returns the lifecycle state.
func (l *Loop) State() State { return l.state }

// Reason returns why the loop ended, or EndNone while it is running.
func (l *Loop) Reason() EndReason { return l.reason }

// Stop requests an external stop, honored at the next frame boundary.
func (l *Loop) Stop() { l.stopped = true }

// Step simulates one frame. It returns false once the loop has ended.
func (l *Loop) Step() bool {
	if l.state == StateEnded {
		return false
	}
	if l.stopped || (l.opts.MaxFrames > 0 && l.world.Frame() >= l.opts.MaxFrames) {
		l.end(EndStopped)
		return false
	}
	if l.world.LiveCount() == 0 {
		l.end(EndAllTerminated)
		return false
	}

	// Every observation is taken before the world moves.
	clear(l.flaps)
	for _, id := range l.world.live {
		l.flaps[id] = l.sources[id].Decide(l.world.Observe(id))
	}

	ev := l.world.Step(l.flaps)
	if l.tracker != nil {
		l.tracker.Apply(ev)
	}

	switch {
	case l.opts.Mode == ModeHuman && len(ev.Terminated) > 0:
		l.end(EndAgentTerminated)
	case l.world.LiveCount() == 0:
		l.end(EndAllTerminated)
	}

	if l.opts.Sink != nil {
		l.opts.Sink.Observe(l.world.Snapshot())
	}
	return l.state == StateRunning
}

// Run steps until the loop ends. Cancelling ctx stops it at the next frame
// boundary; agents still alive keep their fitness without a terminal penalty.
func (l *Loop) Run(ctx context.Context) Result {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
		default:
		}
		if !l.Step() {
			return l.Result()
		}
	}
}

// Result returns the loop summary. Fitness is final only once the loop has ended.
func (l *Loop) Result() Result {
	res := Result{
		Passes: make([]int, len(l.world.agents)),
		Score:  l.world.Score(),
		Frames: l.world.Frame(),
		Reason: l.reason,
	}
	for i, a := range l.world.agents {
		res.Passes[i] = a.Passes
	}
	if l.tracker != nil {
		res.Fitness = l.tracker.Scores()
	}
	return res
}

func (l *Loop) end(reason EndReason) {
	l.state = StateEnded
	l.reason = reason
}

// RunGeneration evaluates one generation of policies in a shared world and
// returns their fitness in input order.
func RunGeneration(ctx context.Context, cfg config.Config, policies []Policy, opts Options) Result {
	sources := make([]DecisionSource, len(policies))
	for i, p := range policies {
		sources[i] = PolicyDecision{Policy: p, Threshold: cfg.Training.DecisionThreshold}
	}
	opts.Mode = ModeTraining
	return NewLoop(cfg, sources, opts).Run(ctx)
}
