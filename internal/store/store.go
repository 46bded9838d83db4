// Package store persists pipeline runs in SQLite and owns the retention
// invariant: exactly the two most recent runs are kept.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"visit_coverage/internal/pipeline"

	_ "modernc.org/sqlite"
)

const retainRuns = 2

// ErrNoRuns is returned when no run has been saved yet.
var ErrNoRuns = errors.New("no runs saved")

// Store wraps SQLite access for run snapshots. A single mutex serializes
// writers; concurrent saves would otherwise race the keep-two eviction.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	now func() time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
        run_id TEXT PRIMARY KEY,
        created_at INTEGER NOT NULL,
        merged_json TEXT NOT NULL,
        summary_json TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`)
	return err
}

// Run is a stored snapshot's metadata.
type Run struct {
	ID        string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRun writes both tables of a new run in one transaction and evicts
// everything but the newest two in the same transaction, so a crash can
// never leave a half-written run or three retained ones.
func (s *Store) SaveRun(ctx context.Context, merged pipeline.Table, summary []pipeline.SummaryRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("encode merged table: %w", err)
	}
	if summary == nil {
		summary = []pipeline.SummaryRow{}
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	created := s.now()
	runID := created.Format("20060102_150405")
	var clash int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id LIKE ? || '%'`, runID).Scan(&clash); err != nil {
		return "", err
	}
	if clash > 0 {
		// two runs inside the same second keep a strict order via suffix
		runID = fmt.Sprintf("%s_%d", runID, clash+1)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, merged_json, summary_json) VALUES (?,?,?,?)`,
		runID, created.UnixNano(), string(mergedJSON), string(summaryJSON)); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM runs WHERE run_id NOT IN (SELECT run_id FROM runs ORDER BY created_at DESC LIMIT ?)`,
		retainRuns); err != nil {
		return "", fmt.Errorf("evict old runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LoadRun reads back one run's tables.
func (s *Store) LoadRun(ctx context.Context, runID string) (pipeline.Table, []pipeline.SummaryRow, error) {
	var mergedJSON, summaryJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT merged_json, summary_json FROM runs WHERE run_id = ?`, runID).
		Scan(&mergedJSON, &summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.Table{}, nil, fmt.Errorf("run %s: %w", runID, ErrNoRuns)
	}
	if err != nil {
		return pipeline.Table{}, nil, err
	}
	var merged pipeline.Table
	if err := json.Unmarshal([]byte(mergedJSON), &merged); err != nil {
		return pipeline.Table{}, nil, fmt.Errorf("decode merged table: %w", err)
	}
	var summary []pipeline.SummaryRow
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return pipeline.Table{}, nil, fmt.Errorf("decode summary table: %w", err)
	}
	return merged, summary, nil
}

// LatestRuns returns the newest run ID and, when present, the one before
// it. previous is empty for a store holding a single run; ErrNoRuns when
// the store is empty.
func (s *Store) LatestRuns(ctx context.Context) (current, previous string, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id FROM runs ORDER BY created_at DESC LIMIT ?`, retainRuns)
	if err != nil {
		return "", "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", "", err
	}
	switch len(ids) {
	case 0:
		return "", "", ErrNoRuns
	case 1:
		return ids[0], "", nil
	default:
		return ids[0], ids[1], nil
	}
}

// ListRuns returns all retained runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var nanos int64
		if err := rows.Scan(&r.ID, &nanos); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(0, nanos).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
