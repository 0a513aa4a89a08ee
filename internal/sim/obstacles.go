package sim

import (
	"math/rand"

	"github.com/vovakirdan/flappy-arena/internal/config"
	"github.com/vovakirdan/flappy-arena/internal/core"
)

// ObstaclePair is a top and a bottom segment sharing one horizontal position,
// separated by a vertical gap.
type ObstaclePair struct {
	ID        uint64  // Monotonic spawn number, unique within a run
	X         float64 // Horizontal center of both segments
	GapCenter float64 // Vertical center of the gap
	GapHeight float64
	Scored    bool // Whether any agent has passed this pair
}

// TopEdge returns the lower edge of the top segment.
func (p ObstaclePair) TopEdge() float64 {
	return p.GapCenter - p.GapHeight/2
}

// BottomEdge returns the upper edge of the bottom segment.
func (p ObstaclePair) BottomEdge() float64 {
	return p.GapCenter + p.GapHeight/2
}

// TopRect returns the collision rectangle for the top segment.
func (p ObstaclePair) TopRect(width float64) core.Rect {
	return core.NewRect(p.X-width/2, 0, width, p.TopEdge())
}

// BottomRect returns the collision rectangle for the bottom segment.
func (p ObstaclePair) BottomRect(width, fieldH float64) core.Rect {
	top := p.BottomEdge()
	return core.NewRect(p.X-width/2, top, width, fieldH-top)
}

// Obstacles spawns, moves and prunes obstacle pairs.
// Pairs are kept in spawn order, which is also left-to-right order.
type Obstacles struct {
	pairs  []ObstaclePair
	rng    *rand.Rand
	fieldW float64
	fieldH float64
	cfg    config.ObstacleConfig
	nextID uint64
}

// NewObstacles creates an empty obstacle set with the given RNG seed.
func NewObstacles(seed int64, field config.FieldConfig, cfg config.ObstacleConfig) *Obstacles {
	o := &Obstacles{
		pairs:  make([]ObstaclePair, 0, 8),
		fieldW: field.Width,
		fieldH: field.Height,
		cfg:    cfg,
	}
	o.Reset(seed)
	return o
}

// Reset clears all pairs and reseeds the RNG.
func (o *Obstacles) Reset(seed int64) {
	o.pairs = o.pairs[:0]
	o.rng = rand.New(rand.NewSource(seed))
	o.nextID = 0
}

// Pairs returns the live pairs in left-to-right order.
// The slice is owned by Obstacles and is only valid until the next mutation.
func (o *Obstacles) Pairs() []ObstaclePair {
	return o.pairs
}

// Len returns the number of live pairs.
func (o *Obstacles) Len() int {
	return len(o.pairs)
}

// Width returns the segment width.
func (o *Obstacles) Width() float64 {
	return o.cfg.Width
}

// SpawnX returns the horizontal position new pairs appear at.
func (o *Obstacles) SpawnX() float64 {
	return o.fieldW + o.cfg.SpawnOffset
}

// ShouldSpawn reports whether a new pair is due: either none exist, or the
// most recently spawned one has travelled spawn_interval from the right edge.
func (o *Obstacles) ShouldSpawn() bool {
	if len(o.pairs) == 0 {
		return true
	}
	return o.pairs[len(o.pairs)-1].X < o.fieldW-o.cfg.SpawnInterval
}

// SpawnPair appends a pair at the spawn position with a gap center drawn from
// the configured discrete set.
func (o *Obstacles) SpawnPair() ObstaclePair {
	center := o.cfg.GapCenters[o.rng.Intn(len(o.cfg.GapCenters))]
	p := ObstaclePair{
		ID:        o.nextID,
		X:         o.SpawnX(),
		GapCenter: center,
		GapHeight: o.cfg.GapHeight,
	}
	o.nextID++
	o.pairs = append(o.pairs, p)
	return p
}

// Advance moves every pair left by speed.
func (o *Obstacles) Advance(speed float64) {
	for i := range o.pairs {
		o.pairs[i].X -= speed
	}
}

// Prune removes pairs whose right edge is more than prune_margin past the
// left field edge. Returns the number of removed pairs.
func (o *Obstacles) Prune() int {
	half := o.cfg.Width / 2
	kept := o.pairs[:0]
	for _, p := range o.pairs {
		if p.X+half >= -o.cfg.PruneMargin {
			kept = append(kept, p)
		}
	}
	removed := len(o.pairs) - len(kept)
	o.pairs = kept
	return removed
}

// NextUnpassed returns the first pair whose center is not yet behind x.
// When there is none, a placeholder pair at the spawn position with the
// default gap is returned and ok is false.
func (o *Obstacles) NextUnpassed(x float64) (p ObstaclePair, ok bool) {
	for _, p := range o.pairs {
		if p.X >= x {
			return p, true
		}
	}
	return o.Placeholder(), false
}

// Placeholder returns the stand-in pair used for observations when no real
// pair lies ahead.
func (o *Obstacles) Placeholder() ObstaclePair {
	return ObstaclePair{
		ID:        o.nextID,
		X:         o.SpawnX(),
		GapCenter: o.cfg.DefaultGapCenter,
		GapHeight: o.cfg.GapHeight,
	}
}
