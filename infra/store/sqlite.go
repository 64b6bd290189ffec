// Package store persists scheduling runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/skyplan/core/model"
	"github.com/kilianp07/skyplan/core/plan"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one scheduling run: the plans of one night and the atoms they
// were built from.
type Run struct {
	ID        string                  `json:"id"`
	Night     int                     `json:"night"`
	CreatedAt time.Time               `json:"created_at"`
	Plans     []plan.Snapshot         `json:"plans"`
	Atoms     map[string][]model.Atom `json:"atoms,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// SQLiteStore persists runs to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    night INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS plans (
    run_id TEXT NOT NULL REFERENCES runs(id),
    site TEXT NOT NULL,
    record TEXT NOT NULL,
    PRIMARY KEY (run_id, site)
);
CREATE TABLE IF NOT EXISTS atoms (
    run_id TEXT NOT NULL REFERENCES runs(id),
    obs_id TEXT NOT NULL,
    record TEXT NOT NULL,
    PRIMARY KEY (run_id, obs_id)
);`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun writes the run, its plans and atoms in one transaction. A run
// with an empty ID gets a new one, which is returned.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, night, created_at) VALUES (?, ?, ?)`,
		run.ID, run.Night, run.CreatedAt.UnixNano()); err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	for _, p := range run.Plans {
		b, err := json.Marshal(p)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO plans (run_id, site, record) VALUES (?, ?, ?)`,
			run.ID, p.Site.String(), string(b)); err != nil {
			return "", fmt.Errorf("insert plan %s: %w", p.Site, err)
		}
	}
	for obsID, atoms := range run.Atoms {
		b, err := json.Marshal(atoms)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO atoms (run_id, obs_id, record) VALUES (?, ?, ?)`,
			run.ID, obsID, string(b)); err != nil {
			return "", fmt.Errorf("insert atoms %s: %w", obsID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadRun reads a run back.
func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (Run, error) {
	run := Run{ID: id}
	var created int64
	err := s.db.QueryRowContext(ctx, `SELECT night, created_at FROM runs WHERE id = ?`, id).Scan(&run.Night, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()

	if run.Plans, err = s.plans(ctx, id); err != nil {
		return Run{}, err
	}
	if run.Atoms, err = s.atoms(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *SQLiteStore) plans(ctx context.Context, id string) ([]plan.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM plans WHERE run_id = ? ORDER BY site`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []plan.Snapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p plan.Snapshot
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) atoms(ctx context.Context, id string) (map[string][]model.Atom, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT obs_id, record FROM atoms WHERE run_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := make(map[string][]model.Atom)
	for rows.Next() {
		var obsID, data string
		if err := rows.Scan(&obsID, &data); err != nil {
			return nil, err
		}
		var atoms []model.Atom
		if err := json.Unmarshal([]byte(data), &atoms); err != nil {
			return nil, fmt.Errorf("unmarshal atoms %s: %w", obsID, err)
		}
		res[obsID] = atoms
	}
	return res, rows.Err()
}

// RunInfo is a run header.
type RunInfo struct {
	ID        string    `json:"id"`
	Night     int       `json:"night"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRuns returns the stored runs, oldest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, night, created_at FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []RunInfo
	for rows.Next() {
		var ri RunInfo
		var created int64
		if err := rows.Scan(&ri.ID, &ri.Night, &created); err != nil {
			return nil, err
		}
		ri.CreatedAt = time.Unix(0, created).UTC()
		res = append(res, ri)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
