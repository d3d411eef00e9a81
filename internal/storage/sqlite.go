// Package storage provides SQLite-based persistence for experience runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/firewave/internal/session"
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// RunRecord is one stored experience run.
type RunRecord struct {
	ID             int64
	RunID          string
	Layout         string
	Preset         string
	Outcome        string // "finished", "manual", "inactivity", "restart", "shutdown"
	Waves          int
	WavesCompleted int
	Duration       float64 // Seconds of simulation time
	StartedAt      time.Time
	CreatedAt      time.Time
	Actors         []ActorRecord // Filled by RunByID only
}

// ActorRecord is one actor's result within a run.
type ActorRecord struct {
	RunID        string
	Actor        int
	Name         string
	Level        string
	Efficiency   float64
	Extinguished float64
	FiresCleared int
	Active       bool
	StartedAt    time.Time // Of the run, filled by ActorHistory
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			layout TEXT NOT NULL,
			preset TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			waves INTEGER NOT NULL DEFAULT 0,
			waves_completed INTEGER NOT NULL DEFAULT 0,
			duration_secs REAL NOT NULL DEFAULT 0,
			started_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS actor_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			actor INTEGER NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL,
			efficiency REAL NOT NULL DEFAULT 0,
			extinguished REAL NOT NULL DEFAULT 0,
			fires_cleared INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_actor_results_run ON actor_results(run_id);
		CREATE INDEX IF NOT EXISTS idx_actor_results_actor ON actor_results(actor);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertRun records a run and its actor results in one transaction.
// Returns the ID of the inserted run row.
func (s *Store) InsertRun(run RunRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(
		`INSERT INTO runs
		 (run_id, layout, preset, outcome, waves, waves_completed, duration_secs, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Layout,
		run.Preset,
		run.Outcome,
		run.Waves,
		run.WavesCompleted,
		run.Duration,
		run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, a := range run.Actors {
		_, err := tx.Exec(
			`INSERT INTO actor_results
			 (run_id, actor, name, level, efficiency, extinguished, fires_cleared, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, a.Actor, a.Name, a.Level, a.Efficiency, a.Extinguished, a.FiresCleared, a.Active,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot save actor result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return id, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, layout, preset, outcome, waves, waves_completed,
		        duration_secs, started_at, created_at
		 FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves a run with its actor results. Returns nil if not found.
func (s *Store) RunByID(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, run_id, layout, preset, outcome, waves, waves_completed,
		        duration_secs, started_at, created_at
		 FROM runs
		 WHERE run_id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT run_id, actor, name, level, efficiency, extinguished, fires_cleared, active
		 FROM actor_results
		 WHERE run_id = ?
		 ORDER BY actor`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query actor results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a ActorRecord
		if err := rows.Scan(&a.RunID, &a.Actor, &a.Name, &a.Level, &a.Efficiency, &a.Extinguished, &a.FiresCleared, &a.Active); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		a.StartedAt = run.StartedAt
		run.Actors = append(run.Actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return &run, nil
}

// ActorHistory retrieves one actor's results across runs, newest first.
func (s *Store) ActorHistory(actor int, limit int) ([]ActorRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT a.run_id, a.actor, a.name, a.level, a.efficiency, a.extinguished,
		        a.fires_cleared, a.active, r.started_at
		 FROM actor_results a
		 JOIN runs r ON r.run_id = a.run_id
		 WHERE a.actor = ?
		 ORDER BY r.started_at DESC, a.id DESC
		 LIMIT ?`,
		actor, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query actor history: %w", err)
	}
	defer rows.Close()

	var out []ActorRecord
	for rows.Next() {
		var a ActorRecord
		var startedAt any
		if err := rows.Scan(&a.RunID, &a.Actor, &a.Name, &a.Level, &a.Efficiency, &a.Extinguished, &a.FiresCleared, &a.Active, &startedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		a.StartedAt = parseTime(startedAt)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// ClearRuns deletes every stored run.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM actor_results"); err != nil {
		return fmt.Errorf("storage: cannot clear actor results: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// SaveRun implements session.RunSaver.
// This adapter allows the session to save runs without direct storage dependency.
func (s *Store) SaveRun(result session.RunResult) error {
	run := RunRecord{
		RunID:          result.RunID,
		Layout:         result.Layout,
		Preset:         result.Preset,
		Outcome:        result.Outcome,
		Waves:          result.Waves,
		WavesCompleted: result.WavesCompleted,
		Duration:       result.Duration,
		StartedAt:      result.StartedAt,
	}
	for _, a := range result.Actors {
		run.Actors = append(run.Actors, ActorRecord{
			Actor:        a.Actor,
			Name:         a.Name,
			Level:        a.Level,
			Efficiency:   a.Efficiency,
			Extinguished: a.Extinguished,
			FiresCleared: a.FiresCleared,
			Active:       a.Active,
		})
	}
	_, err := s.InsertRun(run)
	return err
}

// Ensure Store implements RunSaver
var _ session.RunSaver = (*Store)(nil)

// RunStats contains aggregated statistics over all runs.
type RunStats struct {
	Runs           int
	Finished       int
	AvgDuration    float64
	BestEfficiency float64
	TotalFires     int
	LastPlayed     time.Time
}

// Stats retrieves aggregated statistics.
func (s *Store) Stats() (*RunStats, error) {
	stats := &RunStats{}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'finished' THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(duration_secs), 0)
		 FROM runs`,
	).Scan(&stats.Runs, &stats.Finished, &stats.AvgDuration)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(MAX(efficiency), 0), COALESCE(SUM(fires_cleared), 0) FROM actor_results`,
	).Scan(&stats.BestEfficiency, &stats.TotalFires)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get actor stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var run RunRecord
	var startedAt, createdAt any
	err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.Layout,
		&run.Preset,
		&run.Outcome,
		&run.Waves,
		&run.WavesCompleted,
		&run.Duration,
		&startedAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	run.CreatedAt = parseTime(createdAt)
	return run, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
