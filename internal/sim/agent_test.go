package sim

import "testing"

func TestAgentGravity(t *testing.T) {
	a := NewAgent(0, 200, 360)
	a.Update(0.5, 20)

	if a.Velocity != 0.5 {
		t.Errorf("Velocity = %v, expected 0.5", a.Velocity)
	}
	if a.Y != 360.5 {
		t.Errorf("Y = %v, expected 360.5", a.Y)
	}
}

func TestAgentTerminalVelocity(t *testing.T) {
	a := NewAgent(0, 200, 0)

	prev := a.Velocity
	for i := 0; i < 100; i++ {
		a.Update(0.5, 20)
		if a.Velocity > 20 {
			t.Fatalf("step %d: Velocity = %v exceeds terminal velocity", i, a.Velocity)
		}
		if a.Velocity < prev {
			t.Fatalf("step %d: Velocity decreased from %v to %v", i, prev, a.Velocity)
		}
		prev = a.Velocity
	}

	if a.Velocity != 20 {
		t.Errorf("Velocity = %v, expected to converge to 20", a.Velocity)
	}
}

func TestAgentImpulseOverrides(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
	}{
		{"falling fast", 15},
		{"at rest", 0},
		{"already rising", -4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAgent(0, 200, 360)
			a.Velocity = tc.velocity
			a.ApplyImpulse(-10)
			if a.Velocity != -10 {
				t.Errorf("Velocity = %v, expected -10", a.Velocity)
			}
			if a.Y != 360 {
				t.Errorf("ApplyImpulse moved the agent to %v", a.Y)
			}
		})
	}
}

func TestAgentRect(t *testing.T) {
	a := NewAgent(3, 200, 360)
	r := a.Rect(34, 24)

	if r.X != 183 || r.Y != 348 || r.W != 34 || r.H != 24 {
		t.Errorf("Rect() = %+v, expected {183 348 34 24}", r)
	}
}

func TestCauseString(t *testing.T) {
	tests := []struct {
		cause Cause
		want  string
	}{
		{CauseNone, "none"},
		{CauseObstacle, "obstacle"},
		{CauseOutOfBounds, "out_of_bounds"},
		{Cause(42), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.cause.String(); got != tc.want {
			t.Errorf("Cause(%d).String() = %q, expected %q", tc.cause, got, tc.want)
		}
	}
}
