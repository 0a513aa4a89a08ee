package sim

// ObservationSize is the length of Observation.Vector.
const ObservationSize = 5

// Observation is the read-only view of the world one agent decides on.
// It is taken from the state at the start of the frame.
type Observation struct {
	AgentID     int
	Frame       int
	Y           float64
	Velocity    float64
	Pair        ObstaclePair // Nearest pair not yet behind the agent
	Placeholder bool         // Pair is a stand-in; no real pair lies ahead
}

// Vector returns the policy inputs: agent y, lower edge of the top segment,
// its x, upper edge of the bottom segment, its x.
func (o Observation) Vector() []float64 {
	return []float64{
		o.Y,
		o.Pair.TopEdge(),
		o.Pair.X,
		o.Pair.BottomEdge(),
		o.Pair.X,
	}
}

// DecisionSource decides, once per frame, whether its agent flaps.
type DecisionSource interface {
	Decide(obs Observation) bool
}

// DecisionFunc adapts an ordinary function to DecisionSource.
type DecisionFunc func(obs Observation) bool

// Decide calls f(obs).
func (f DecisionFunc) Decide(obs Observation) bool { return f(obs) }

// Policy maps an observation vector to a scalar output.
type Policy interface {
	Activate(inputs []float64) float64
}

// PolicyDecision flaps when the policy output exceeds Threshold.
type PolicyDecision struct {
	Policy    Policy
	Threshold float64
}

// Decide implements DecisionSource.
func (d PolicyDecision) Decide(obs Observation) bool {
	return d.Policy.Activate(obs.Vector()) > d.Threshold
}

// HumanInput turns key state into flap decisions. A flap is latched when the
// key goes down and consumed by the next decision, so one press flaps exactly
// once and holding the key does not repeat.
type HumanInput struct {
	pending bool
	held    bool
}

// NewHumanInput creates an idle input source.
func NewHumanInput() *HumanInput {
	return &HumanInput{}
}

// SetHeld reports the current key state. Only the up-to-down edge latches a
// flap; a press released before the next frame still flaps once.
func (h *HumanInput) SetHeld(down bool) {
	if down && !h.held {
		h.pending = true
	}
	h.held = down
}

// Decide returns and clears the latched flap.
func (h *HumanInput) Decide(Observation) bool {
	flap := h.pending
	h.pending = false
	return flap
}

// Reset clears any latched or held state.
func (h *HumanInput) Reset() {
	h.pending = false
	h.held = false
}
