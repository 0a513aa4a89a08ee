package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Run describes one training session.
type Run struct {
	ID          int64
	RunID       string
	Population  int
	Seed        int64
	Scoring     string
	CreatedAt   time.Time
	Generations int             // Filled by RecentRuns
	BestFitness sql.NullFloat64 // Filled by RecentRuns; invalid until a generation is recorded
}

// Generation holds the fitness statistics of one evaluated generation.
type Generation struct {
	RunID      string
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	BestPasses int // Pairs credited to the fittest agent
	Frames     int // Frames the generation lasted
	CreatedAt  time.Time
}

// SaveRun records the start of a training session.
func (s *Store) SaveRun(run Run) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (run_id, population, seed, scoring) VALUES (?, ?, ?, ?)",
		run.RunID, run.Population, run.Seed, run.Scoring,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveGeneration records the statistics of one generation.
func (s *Store) SaveGeneration(g Generation) error {
	_, err := s.db.Exec(
		`INSERT INTO generations (run_id, generation, best, mean, stddev, best_passes, frames)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, g.Best, g.Mean, g.StdDev, g.BestPasses, g.Frames,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation %d of run %s: %w", g.Generation, g.RunID, err)
	}
	return nil
}

// Generations returns all generations of a run in order.
func (s *Store) Generations(runID string) ([]Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, best, mean, stddev, best_passes, frames, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var g Generation
		var createdAt any
		if err := rows.Scan(&g.RunID, &g.Generation, &g.Best, &g.Mean, &g.StdDev, &g.BestPasses, &g.Frames, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.CreatedAt = parseTimestamp(createdAt)
		gens = append(gens, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return gens, nil
}

// RecentRuns returns the most recent training runs, newest first, together
// with their generation count and best fitness.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.run_id, r.population, r.seed, r.scoring, r.created_at,
		        COUNT(g.id), MAX(g.best)
		 FROM runs r
		 LEFT JOIN generations g ON g.run_id = r.run_id
		 GROUP BY r.id
		 ORDER BY r.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.RunID, &r.Population, &r.Seed, &r.Scoring, &createdAt, &r.Generations, &r.BestFitness); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}
