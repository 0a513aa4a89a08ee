package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
// It mirrors defaults/flappy.yaml and is used when the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Field: FieldConfig{
			Width:  1280,
			Height: 720,
		},
		Physics: PhysicsConfig{
			Gravity:          0.5,
			FlapImpulse:      -10,
			TerminalVelocity: 20,
		},
		Agent: AgentConfig{
			StartX: 200,
			StartY: 360,
			Width:  34,
			Height: 24,
		},
		Obstacles: ObstacleConfig{
			Speed:            5,
			GapHeight:        200,
			SpawnInterval:    350,
			SpawnOffset:      100,
			Width:            80,
			PruneMargin:      10,
			GapCenters:       []float64{250, 300, 350, 400, 450},
			DefaultGapCenter: 350,
		},
		Fitness: FitnessConfig{
			Survival:        0.1,
			PassBonus:       5,
			TerminalPenalty: 1,
		},
		Scoring:   ScoringPerAgent,
		FrameRate: 60,
		Seed:      0,
		Training: TrainingConfig{
			Population:        50,
			Generations:       30,
			Hidden:            6,
			Elite:             2,
			Tournament:        3,
			MutationRate:      0.2,
			MutationSigma:     0.5,
			DecisionThreshold: 0.5,
			MaxFrames:         20000,
			TargetFitness:     0,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
