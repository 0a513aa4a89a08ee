package core

import "testing"

func TestRectIntersects(t *testing.T) {
	// An agent-sized hitbox against pipe segments around it.
	agent := RectFromCenter(200, 360, 34, 24)

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"pipe through agent", NewRect(180, 0, 80, 400), true},
		{"pipe touching right edge", NewRect(217, 0, 80, 720), false},
		{"pipe touching left edge", NewRect(103, 0, 80, 720), false},
		{"segment touching top", NewRect(160, 0, 80, 348), false},
		{"segment touching bottom", NewRect(160, 372, 80, 348), false},
		{"fractional overlap", NewRect(216.5, 371.5, 10, 10), true},
		{"agent inside wide segment", NewRect(0, 0, 1280, 720), true},
		{"zero width", NewRect(200, 0, 0, 720), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agent.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, expected %v", got, tt.want)
			}
			if got := tt.other.Intersects(agent); got != tt.want {
				t.Errorf("reversed Intersects() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestRectFromCenter(t *testing.T) {
	r := RectFromCenter(200, 360, 34, 24)

	if r.X != 183 || r.Y != 348 {
		t.Errorf("origin = (%v, %v), expected (183, 348)", r.X, r.Y)
	}
	if r.Right() != 217 || r.Bottom() != 372 {
		t.Errorf("far edge = (%v, %v), expected (217, 372)", r.Right(), r.Bottom())
	}
}

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		r    Rect
		want bool
	}{
		{NewRect(0, 0, 1, 1), false},
		{NewRect(0, 0, 0, 1), true},
		{NewRect(0, 0, 1, -2), true},
	}
	for _, tt := range tests {
		if got := tt.r.Empty(); got != tt.want {
			t.Errorf("%+v.Empty() = %v, expected %v", tt.r, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, want int
	}{
		{40, 0, 79, 40},
		{-3, 0, 79, 0},
		{120, 0, 79, 79},
		{1, 1, 23, 1},
	}

	for _, tt := range tests {
		if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.val, tt.lo, tt.hi, got, tt.want)
		}
	}
}
