package sim

// Frame is a plain-data copy of the world after a step, handed to render
// sinks. It shares no memory with the World.
type Frame struct {
	Number     int
	Score      int
	Population int
	FieldW     float64
	FieldH     float64
	AgentW     float64
	AgentH     float64
	PairWidth  float64
	Agents     []Agent // Live agents in creation order
	Pairs      []ObstaclePair
}

// Alive returns the number of live agents in the frame.
func (f Frame) Alive() int {
	return len(f.Agents)
}

// RenderSink receives one Frame per simulated frame.
type RenderSink interface {
	Observe(frame Frame)
}

// RenderFunc adapts an ordinary function to RenderSink.
type RenderFunc func(frame Frame)

// Observe calls f(frame).
func (f RenderFunc) Observe(frame Frame) { f(frame) }

// Snapshot copies the current world state into a Frame.
func (w *World) Snapshot() Frame {
	agents := make([]Agent, 0, len(w.live))
	for _, id := range w.live {
		agents = append(agents, w.agents[id])
	}
	return Frame{
		Number:     w.frame,
		Score:      w.score,
		Population: len(w.agents),
		FieldW:     w.cfg.Field.Width,
		FieldH:     w.cfg.Field.Height,
		AgentW:     w.cfg.Agent.Width,
		AgentH:     w.cfg.Agent.Height,
		PairWidth:  w.obstacles.Width(),
		Agents:     agents,
		Pairs:      w.Pairs(),
	}
}
