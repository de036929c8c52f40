// Package persist stores replicated document updates in a local SQLite file.
//
// Each document is an append-only log of encoded updates. Compaction replaces
// the log with a single snapshot row inside one SQLite transaction.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/fontshelf/internal/crdt"
)

const schema = `
CREATE TABLE IF NOT EXISTS updates (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	doc        TEXT    NOT NULL,
	replica    TEXT    NOT NULL,
	payload    BLOB    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS updates_doc_seq ON updates (doc, seq);
`

// ErrClosed is returned after Close.
var ErrClosed = errors.New("persist: store closed")

// DB is a SQLite-backed update log.
type DB struct {
	db *sql.DB
}

// Open creates the database file and schema when missing.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps writes strictly ordered within the process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Load returns every stored update for doc in append order. Rows that fail to
// decode are skipped and reported through the returned error alongside the
// updates that did decode.
func (d *DB) Load(ctx context.Context, doc string) ([]crdt.Update, error) {
	if d == nil || d.db == nil {
		return nil, ErrClosed
	}
	rows, err := d.db.QueryContext(ctx, `SELECT seq, payload FROM updates WHERE doc = ? ORDER BY seq`, doc)
	if err != nil {
		return nil, fmt.Errorf("query updates: %w", err)
	}
	defer rows.Close()

	var (
		updates []crdt.Update
		bad     []error
	)
	for rows.Next() {
		var (
			seq     int64
			payload []byte
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			return updates, fmt.Errorf("scan update: %w", err)
		}
		u, err := crdt.Decode(payload)
		if err != nil {
			bad = append(bad, fmt.Errorf("row %d: %w", seq, err))
			continue
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return updates, fmt.Errorf("read updates: %w", err)
	}
	return updates, errors.Join(bad...)
}

// Append stores u and returns the number of rows now held for doc.
func (d *DB) Append(ctx context.Context, doc string, u crdt.Update) (int, error) {
	if d == nil || d.db == nil {
		return 0, ErrClosed
	}
	payload, err := crdt.Encode(u)
	if err != nil {
		return 0, err
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO updates (doc, replica, payload, created_at) VALUES (?, ?, ?, ?)`,
		doc, u.Replica, payload, time.Now().Unix()); err != nil {
		return 0, fmt.Errorf("insert update: %w", err)
	}
	return d.Count(ctx, doc)
}

// Count returns the number of rows held for doc.
func (d *DB) Count(ctx context.Context, doc string) (int, error) {
	if d == nil || d.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM updates WHERE doc = ?`, doc).Scan(&n); err != nil {
		return 0, fmt.Errorf("count updates: %w", err)
	}
	return n, nil
}

// Compact folds the log for doc into one row. merge receives every stored
// update, including ones written by other processes, and returns the snapshot
// that replaces them. The read, delete and insert share one transaction.
func (d *DB) Compact(ctx context.Context, doc string, merge func([]crdt.Update) (crdt.Update, error)) error {
	if d == nil || d.db == nil {
		return ErrClosed
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin compaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT payload FROM updates WHERE doc = ? ORDER BY seq`, doc)
	if err != nil {
		return fmt.Errorf("query updates: %w", err)
	}
	var stored []crdt.Update
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan update: %w", err)
		}
		u, err := crdt.Decode(payload)
		if err != nil {
			continue
		}
		stored = append(stored, u)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("read updates: %w", err)
	}

	snapshot, err := merge(stored)
	if err != nil {
		return fmt.Errorf("merge updates: %w", err)
	}
	payload, err := crdt.Encode(snapshot)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM updates WHERE doc = ?`, doc); err != nil {
		return fmt.Errorf("delete updates: %w", err)
	}
	if len(snapshot.Ops) > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO updates (doc, replica, payload, created_at) VALUES (?, ?, ?, ?)`,
			doc, snapshot.Replica, payload, time.Now().Unix()); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit compaction: %w", err)
	}
	return nil
}
