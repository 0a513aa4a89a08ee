package sim

import (
	"testing"

	"github.com/vovakirdan/flappy-arena/internal/config"
)

func newTestObstacles(seed int64) *Obstacles {
	cfg := config.DefaultConfig()
	return NewObstacles(seed, cfg.Field, cfg.Obstacles)
}

func TestPairGeometry(t *testing.T) {
	cfg := config.DefaultConfig()
	width := cfg.Obstacles.Width
	fieldH := cfg.Field.Height

	for _, center := range cfg.Obstacles.GapCenters {
		p := ObstaclePair{X: 500, GapCenter: center, GapHeight: 200}
		top := p.TopRect(width)
		bottom := p.BottomRect(width, fieldH)

		if top.Y != 0 || top.Bottom() != center-100 {
			t.Errorf("center %v: top spans [%v, %v], expected [0, %v]", center, top.Y, top.Bottom(), center-100)
		}
		if bottom.Y != center+100 || bottom.Bottom() != fieldH {
			t.Errorf("center %v: bottom spans [%v, %v], expected [%v, %v]", center, bottom.Y, bottom.Bottom(), center+100, fieldH)
		}
		if gap := bottom.Y - top.Bottom(); gap != 200 {
			t.Errorf("center %v: gap = %v, expected 200", center, gap)
		}
		if top.X != 460 || bottom.X != 460 || top.W != 80 || bottom.W != 80 {
			t.Errorf("center %v: segments not centered on x=500 with width 80: %+v %+v", center, top, bottom)
		}
	}
}

func TestPairGeometryBoundaries(t *testing.T) {
	tests := []struct {
		center     float64
		topEdge    float64
		bottomEdge float64
		bottomH    float64
	}{
		{250, 150, 350, 370},
		{450, 350, 550, 170},
	}

	for _, tc := range tests {
		p := ObstaclePair{GapCenter: tc.center, GapHeight: 200}
		if p.TopEdge() != tc.topEdge {
			t.Errorf("center %v: TopEdge() = %v, expected %v", tc.center, p.TopEdge(), tc.topEdge)
		}
		if p.BottomEdge() != tc.bottomEdge {
			t.Errorf("center %v: BottomEdge() = %v, expected %v", tc.center, p.BottomEdge(), tc.bottomEdge)
		}
		if h := p.BottomRect(80, 720).H; h != tc.bottomH {
			t.Errorf("center %v: bottom height = %v, expected %v", tc.center, h, tc.bottomH)
		}
	}
}

func TestSpawnUsesDiscreteGapSet(t *testing.T) {
	o := newTestObstacles(7)
	allowed := map[float64]bool{250: true, 300: true, 350: true, 400: true, 450: true}
	seen := make(map[float64]int)

	for i := 0; i < 200; i++ {
		p := o.SpawnPair()
		if !allowed[p.GapCenter] {
			t.Fatalf("SpawnPair() gap center %v not in the configured set", p.GapCenter)
		}
		if p.X != 1380 {
			t.Fatalf("SpawnPair() X = %v, expected 1380", p.X)
		}
		seen[p.GapCenter]++
	}

	if len(seen) != len(allowed) {
		t.Errorf("only %d of %d gap centers drawn in 200 spawns: %v", len(seen), len(allowed), seen)
	}
}

func TestSpawnIDsMonotonic(t *testing.T) {
	o := newTestObstacles(1)
	for i := uint64(0); i < 5; i++ {
		if p := o.SpawnPair(); p.ID != i {
			t.Errorf("SpawnPair() ID = %d, expected %d", p.ID, i)
		}
	}

	o.Reset(1)
	if p := o.SpawnPair(); p.ID != 0 {
		t.Errorf("after Reset, ID = %d, expected 0", p.ID)
	}
}

func TestSpawnDeterminism(t *testing.T) {
	a := newTestObstacles(99)
	b := newTestObstacles(99)

	for i := 0; i < 50; i++ {
		pa, pb := a.SpawnPair(), b.SpawnPair()
		if pa != pb {
			t.Fatalf("spawn %d differs: %+v vs %+v", i, pa, pb)
		}
	}
}

func TestShouldSpawn(t *testing.T) {
	o := newTestObstacles(1)

	if !o.ShouldSpawn() {
		t.Fatal("ShouldSpawn() = false with no pairs, expected true")
	}
	o.SpawnPair()
	if o.ShouldSpawn() {
		t.Fatal("ShouldSpawn() = true right after a spawn, expected false")
	}

	// 1380 - 90*5 = 930 is exactly width - interval, not past it.
	for i := 0; i < 90; i++ {
		o.Advance(5)
	}
	if o.ShouldSpawn() {
		t.Errorf("ShouldSpawn() = true at X=%v, expected false", o.Pairs()[0].X)
	}
	o.Advance(5)
	if !o.ShouldSpawn() {
		t.Errorf("ShouldSpawn() = false at X=%v, expected true", o.Pairs()[0].X)
	}
}

func TestAdvanceMovesAllPairs(t *testing.T) {
	o := newTestObstacles(1)
	o.SpawnPair()
	o.Advance(400)
	o.SpawnPair()
	o.Advance(5)

	pairs := o.Pairs()
	if pairs[0].X != 975 || pairs[1].X != 1375 {
		t.Errorf("pair positions = %v, %v, expected 975, 1375", pairs[0].X, pairs[1].X)
	}
}

func TestPrune(t *testing.T) {
	o := newTestObstacles(1)
	o.SpawnPair()

	// Right edge at -50+40 = -10 is still within the margin.
	o.Advance(1430)
	if removed := o.Prune(); removed != 0 {
		t.Fatalf("Prune() = %d at X=-50, expected 0", removed)
	}

	o.Advance(1)
	if removed := o.Prune(); removed != 1 {
		t.Errorf("Prune() = %d at X=-51, expected 1", removed)
	}
	if o.Len() != 0 {
		t.Errorf("Len() = %d after prune, expected 0", o.Len())
	}
}

func TestPruneKeepsOrder(t *testing.T) {
	o := newTestObstacles(1)
	for i := 0; i < 3; i++ {
		o.SpawnPair()
		o.Advance(500)
	}
	// Positions are now -120, 380, 880.
	o.Prune()

	pairs := o.Pairs()
	if len(pairs) != 2 || pairs[0].ID != 1 || pairs[1].ID != 2 {
		t.Errorf("Pairs() after prune = %+v, expected IDs 1, 2", pairs)
	}
}

func TestNextUnpassed(t *testing.T) {
	o := newTestObstacles(1)

	p, ok := o.NextUnpassed(200)
	if ok {
		t.Fatal("NextUnpassed() ok = true with no pairs")
	}
	if p.X != 1380 || p.GapCenter != 350 || p.GapHeight != 200 {
		t.Errorf("placeholder = %+v, expected X=1380 center=350 gap=200", p)
	}

	o.SpawnPair()
	o.Advance(1200) // X = 180, behind the agent
	o.SpawnPair()   // X = 1380

	p, ok = o.NextUnpassed(200)
	if !ok || p.ID != 1 {
		t.Errorf("NextUnpassed(200) = %+v, %v, expected pair 1", p, ok)
	}

	p, ok = o.NextUnpassed(180)
	if !ok || p.ID != 0 {
		t.Errorf("NextUnpassed(180) = %+v, %v, expected pair 0 (x == agent x)", p, ok)
	}
}
