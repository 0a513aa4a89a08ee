// Package telemetry writes training statistics to CSV files for offline analysis.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/flappy-arena/internal/config"
)

// GenerationRecord is one row of generations.csv.
type GenerationRecord struct {
	RunID      string  `csv:"run_id"`
	Generation int     `csv:"generation"`
	Best       float64 `csv:"best"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	BestPasses int     `csv:"best_passes"`
	Score      int     `csv:"score"`
	Frames     int     `csv:"frames"`
	Reason     string  `csv:"end_reason"`
}

// AgentRecord is one row of agents.csv: the result of one agent in one generation.
type AgentRecord struct {
	Generation int     `csv:"generation"`
	Agent      int     `csv:"agent"`
	Fitness    float64 `csv:"fitness"`
	Passes     int     `csv:"passes"`
}

// OutputManager handles structured training output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir             string
	generationsFile *os.File
	agentsFile      *os.File

	generationsHeaderWritten bool
	agentsHeaderWritten      bool
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating generations.csv: %w", err)
	}
	om.generationsFile = f

	f, err = os.Create(filepath.Join(dir, "agents.csv"))
	if err != nil {
		om.generationsFile.Close()
		return nil, fmt.Errorf("telemetry: creating agents.csv: %w", err)
	}
	om.agentsFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends one row to generations.csv.
func (om *OutputManager) WriteGeneration(rec GenerationRecord) error {
	if om == nil {
		return nil
	}

	records := []GenerationRecord{rec}
	if !om.generationsHeaderWritten {
		if err := gocsv.Marshal(records, om.generationsFile); err != nil {
			return fmt.Errorf("telemetry: writing generation: %w", err)
		}
		om.generationsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.generationsFile); err != nil {
		return fmt.Errorf("telemetry: writing generation: %w", err)
	}
	return nil
}

// WriteAgents appends the per-agent results of one generation to agents.csv.
func (om *OutputManager) WriteAgents(records []AgentRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.agentsHeaderWritten {
		if err := gocsv.Marshal(records, om.agentsFile); err != nil {
			return fmt.Errorf("telemetry: writing agents: %w", err)
		}
		om.agentsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.agentsFile); err != nil {
		return fmt.Errorf("telemetry: writing agents: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.generationsFile, om.agentsFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
