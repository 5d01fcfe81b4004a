// Package manifest records generation runs and the samples they produced in
// a SQLite database.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store is a manifest database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and applies migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	s := &Store{db: db, log: log}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one invocation of the generator.
type Run struct {
	ID         string
	Seed       uint64
	Requested  int
	Attempted  int
	Accepted   int
	Elapsed    time.Duration
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Sample is one accepted output pair.
type Sample struct {
	RunID         string
	Index         int
	SourceStem    string
	TargetStem    string
	Rotation      float64
	Foreground    int
	Fallback      string
	Perturbations string
	ImagePath     string
	MaskPath      string
}

// StartRun inserts a new run with a fresh id.
func (s *Store) StartRun(seed uint64, requested int) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Seed:      seed,
		Requested: requested,
		StartedAt: time.Now().UTC(),
	}
	// SQLite integers are signed; the seed round-trips through int64.
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, seed, requested, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, int64(run.Seed), run.Requested, run.StartedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(id string, attempted, accepted int, elapsed time.Duration) error {
	res, err := s.db.Exec(
		`UPDATE runs SET attempted = ?, accepted = ?, elapsed_ms = ?, finished_at = ? WHERE run_id = ?`,
		attempted, accepted, elapsed.Milliseconds(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun loads a run by id.
func (s *Store) GetRun(id string) (Run, error) {
	var (
		run      Run
		seed     int64
		ms       int64
		finished sql.NullTime
	)
	err := s.db.QueryRow(
		`SELECT run_id, seed, requested, attempted, accepted, elapsed_ms, started_at, finished_at
		   FROM runs WHERE run_id = ?`, id,
	).Scan(&run.ID, &seed, &run.Requested, &run.Attempted, &run.Accepted, &ms, &run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to query run %s: %w", id, err)
	}
	run.Seed = uint64(seed)
	run.Elapsed = time.Duration(ms) * time.Millisecond
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}

// RecordSample stores an accepted sample.
func (s *Store) RecordSample(sm Sample) error {
	_, err := s.db.Exec(
		`INSERT INTO samples (run_id, sample_index, source_stem, target_stem, rotation,
		                      foreground, fallback, perturbations, image_path, mask_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sm.RunID, sm.Index, sm.SourceStem, sm.TargetStem, sm.Rotation,
		sm.Foreground, sm.Fallback, sm.Perturbations, sm.ImagePath, sm.MaskPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample %d: %w", sm.Index, err)
	}
	return nil
}

// Samples returns the samples of a run ordered by index.
func (s *Store) Samples(runID string) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT run_id, sample_index, source_stem, target_stem, rotation,
		        foreground, fallback, perturbations, image_path, mask_path
		   FROM samples WHERE run_id = ? ORDER BY sample_index`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.RunID, &sm.Index, &sm.SourceStem, &sm.TargetStem, &sm.Rotation,
			&sm.Foreground, &sm.Fallback, &sm.Perturbations, &sm.ImagePath, &sm.MaskPath); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
