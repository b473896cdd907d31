// Package ledger checkpoints finished batch rows in SQLite so an interrupted
// batch run can resume where it stopped.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/lehigh-university-libraries/pdcheck/internal/results"
)

// ErrLocked means another batch run holds the ledger.
var ErrLocked = errors.New("ledger is in use by another batch run")

const schema = `
CREATE TABLE IF NOT EXISTS batch_rows (
	input TEXT NOT NULL,
	row_id TEXT NOT NULL,
	row_json TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	PRIMARY KEY (input, row_id)
)`

// Ledger is an open checkpoint database. It holds an exclusive file lock until
// closed.
type Ledger struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Batch workers share one connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	return &Ledger{db: db, path: path, lock: lock}, nil
}

// Path returns the database path.
func (l *Ledger) Path() string {
	return l.path
}

// Record stores a finished row for input, replacing any earlier copy.
func (l *Ledger) Record(ctx context.Context, input string, row results.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode ledger row: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO batch_rows (input, row_id, row_json, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(input, row_id) DO UPDATE SET row_json = excluded.row_json, completed_at = excluded.completed_at`,
		input, row.ID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record ledger row %s: %w", row.ID, err)
	}
	return nil
}

// Completed returns the rows already recorded for input, keyed by row id.
func (l *Ledger) Completed(ctx context.Context, input string) (map[string]results.Row, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT row_id, row_json FROM batch_rows WHERE input = ?`, input)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	done := make(map[string]results.Row)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		var row results.Row
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("decode ledger row %s: %w", id, err)
		}
		done[id] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return done, nil
}

// Reset forgets every row recorded for input.
func (l *Ledger) Reset(ctx context.Context, input string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM batch_rows WHERE input = ?`, input); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	return nil
}

// Close closes the database and releases the lock.
func (l *Ledger) Close() error {
	dbErr := l.db.Close()
	lockErr := l.lock.Unlock()
	return errors.Join(dbErr, lockErr)
}
