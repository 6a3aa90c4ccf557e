// Package history keeps a local sqlite ledger of backup and import runs:
// when they ran, whether they succeeded, and how many errors they logged.
// It records run outcomes only; service responses are never cached.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Run kinds.
const (
	KindBackup = "backup"
	KindImport = "import"
)

// Run is one recorded CLI run.
type Run struct {
	RunID      string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	OK         bool
	Errors     int
	Detail     string
}

// DB is the sqlite-backed run ledger.
type DB struct {
	db *sql.DB
}

// Open opens (and if needed creates) the ledger at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &DB{db: db}, nil
}

// newRunID returns a ULID. ULIDs sort by generation time, so run rows
// come back in chronological order on a plain run_id index scan.
func newRunID() string {
	return ulid.Make().String()
}

// RecordRun inserts one run row, assigning a run id when the caller left
// it empty.
func (h *DB) RecordRun(r Run) error {
	if r.RunID == "" {
		r.RunID = newRunID()
	}
	_, err := h.db.Exec(`
		INSERT INTO runs
		(run_id, kind, started_at, finished_at, ok, errors, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Kind, r.StartedAt, r.FinishedAt, r.OK, r.Errors, r.Detail,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

// GetRun returns a single run by id.
func (h *DB) GetRun(runID string) (Run, error) {
	var r Run
	row := h.db.QueryRow(`
		SELECT run_id, kind, started_at, finished_at, ok, errors, detail
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(&r.RunID, &r.Kind, &r.StartedAt, &r.FinishedAt, &r.OK, &r.Errors, &r.Detail)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first. ULID run ids sort
// chronologically, so run_id order is time order.
func (h *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(`
		SELECT run_id, kind, started_at, finished_at, ok, errors, detail
		FROM runs
		ORDER BY run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Kind, &r.StartedAt, &r.FinishedAt, &r.OK, &r.Errors, &r.Detail); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *DB) Close() error {
	return h.db.Close()
}
