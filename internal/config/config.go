// Package config provides YAML-based simulation configuration loading and validation.
// A Config is loaded once before a run starts and treated as immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains every tunable of the simulation, the fitness model and training.
type Config struct {
	Field     FieldConfig    `yaml:"field"`
	Physics   PhysicsConfig  `yaml:"physics"`
	Agent     AgentConfig    `yaml:"agent"`
	Obstacles ObstacleConfig `yaml:"obstacles"`
	Fitness   FitnessConfig  `yaml:"fitness"`
	Scoring   ScoringPolicy  `yaml:"scoring"`
	FrameRate int            `yaml:"frame_rate"`
	Seed      int64          `yaml:"seed"` // 0 = time based
	Training  TrainingConfig `yaml:"training"`
}

// FieldConfig defines the play-field dimensions in world units.
type FieldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig defines agent physics.
type PhysicsConfig struct {
	Gravity          float64 `yaml:"gravity"`           // Downward acceleration per frame
	FlapImpulse      float64 `yaml:"flap_impulse"`      // Velocity set by a flap (negative = up)
	TerminalVelocity float64 `yaml:"terminal_velocity"` // Maximum downward velocity
}

// AgentConfig defines the agents' starting position and hitbox.
type AgentConfig struct {
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ObstacleConfig defines obstacle pair geometry and lifecycle.
type ObstacleConfig struct {
	Speed            float64   `yaml:"speed"`              // Horizontal movement per frame
	GapHeight        float64   `yaml:"gap_height"`         // Vertical distance between segments
	SpawnInterval    float64   `yaml:"spawn_interval"`     // Distance the last pair travels before the next spawns
	SpawnOffset      float64   `yaml:"spawn_offset"`       // Spawn position beyond the right edge
	Width            float64   `yaml:"width"`              // Segment width
	PruneMargin      float64   `yaml:"prune_margin"`       // Distance behind the left edge before removal
	GapCenters       []float64 `yaml:"gap_centers"`        // Discrete set of gap centers
	DefaultGapCenter float64   `yaml:"default_gap_center"` // Gap of the placeholder pair
}

// FitnessConfig defines the three fitness event magnitudes.
type FitnessConfig struct {
	Survival        float64 `yaml:"survival"`         // Added per frame survived
	PassBonus       float64 `yaml:"pass_bonus"`       // Added per obstacle pair passed
	TerminalPenalty float64 `yaml:"terminal_penalty"` // Subtracted once on termination
}

// ScoringPolicy selects how obstacle passes are credited to agents.
type ScoringPolicy string

const (
	// ScoringPerAgent credits every agent that passes a pair.
	ScoringPerAgent ScoringPolicy = "per_agent"
	// ScoringShared credits only the first agent to pass a pair.
	ScoringShared ScoringPolicy = "shared"
)

// TrainingConfig defines the evolutionary driver parameters.
type TrainingConfig struct {
	Population        int     `yaml:"population"`
	Generations       int     `yaml:"generations"`
	Hidden            int     `yaml:"hidden"`             // Hidden neurons per network
	Elite             int     `yaml:"elite"`              // Networks copied unchanged into the next generation
	Tournament        int     `yaml:"tournament"`         // Tournament size for parent selection
	MutationRate      float64 `yaml:"mutation_rate"`      // Per-weight mutation probability
	MutationSigma     float64 `yaml:"mutation_sigma"`     // Standard deviation of weight perturbation
	DecisionThreshold float64 `yaml:"decision_threshold"` // Policy output above which the agent flaps
	MaxFrames         int     `yaml:"max_frames"`         // Frame cap per generation (0 = none)
	TargetFitness     float64 `yaml:"target_fitness"`     // Stop early once reached (0 = never)
}

// Validate checks that the configuration describes a playable world.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		add("field: dimensions must be positive, got %vx%v", c.Field.Width, c.Field.Height)
	}
	if c.Physics.Gravity <= 0 {
		add("physics: gravity must be positive, got %v", c.Physics.Gravity)
	}
	if c.Physics.FlapImpulse >= 0 {
		add("physics: flap_impulse must be negative (upward), got %v", c.Physics.FlapImpulse)
	}
	if c.Physics.TerminalVelocity <= 0 {
		add("physics: terminal_velocity must be positive, got %v", c.Physics.TerminalVelocity)
	}
	if c.Agent.Width <= 0 || c.Agent.Height <= 0 {
		add("agent: hitbox must be positive, got %vx%v", c.Agent.Width, c.Agent.Height)
	}
	if c.Agent.StartY <= 0 || c.Agent.StartY >= c.Field.Height {
		add("agent: start_y %v is outside the field", c.Agent.StartY)
	}
	if c.Obstacles.Speed <= 0 {
		add("obstacles: speed must be positive, got %v", c.Obstacles.Speed)
	}
	if c.Obstacles.GapHeight <= 0 {
		add("obstacles: gap_height must be positive, got %v", c.Obstacles.GapHeight)
	}
	if c.Obstacles.SpawnInterval <= 0 {
		add("obstacles: spawn_interval must be positive, got %v", c.Obstacles.SpawnInterval)
	}
	if c.Obstacles.Width <= 0 {
		add("obstacles: width must be positive, got %v", c.Obstacles.Width)
	}
	if c.Obstacles.PruneMargin < 0 {
		add("obstacles: prune_margin must not be negative, got %v", c.Obstacles.PruneMargin)
	}
	if len(c.Obstacles.GapCenters) == 0 {
		add("obstacles: gap_centers must not be empty")
	}
	half := c.Obstacles.GapHeight / 2
	centers := append([]float64{c.Obstacles.DefaultGapCenter}, c.Obstacles.GapCenters...)
	for _, center := range centers {
		if center-half < 0 || center+half > c.Field.Height {
			add("obstacles: gap center %v does not fit a %v gap inside the field", center, c.Obstacles.GapHeight)
		}
	}
	switch c.Scoring {
	case ScoringPerAgent, ScoringShared:
	default:
		add("scoring: unknown policy %q (want %q or %q)", c.Scoring, ScoringPerAgent, ScoringShared)
	}
	if c.FrameRate <= 0 {
		add("frame_rate must be positive, got %d", c.FrameRate)
	}

	t := c.Training
	if t.Population <= 0 {
		add("training: population must be positive, got %d", t.Population)
	}
	if t.Hidden <= 0 {
		add("training: hidden must be positive, got %d", t.Hidden)
	}
	if t.Elite < 0 || t.Elite > t.Population {
		add("training: elite %d must be within [0, population]", t.Elite)
	}
	if t.Tournament <= 0 {
		add("training: tournament must be positive, got %d", t.Tournament)
	}
	if t.MutationRate < 0 || t.MutationRate > 1 {
		add("training: mutation_rate %v must be within [0, 1]", t.MutationRate)
	}
	if t.MaxFrames < 0 {
		add("training: max_frames must not be negative, got %d", t.MaxFrames)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing config file: %w", err)
	}
	return nil
}
