// Package sqlitekv is rack's persistent kv.Engine: a single SQLite file
// holding one key/value table, accessed through database/sql the way the
// teacher's dialect/sql.Driver wraps a *sql.DB/Conn pair. modernc.org/sqlite
// is a pure-Go driver (no cgo), matching "an embedded, single-process
// document store" — no external database process, no build-time C
// toolchain dependency.
package sqlitekv

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/kv"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS rack_kv (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	key   TEXT UNIQUE NOT NULL,
	value BLOB NOT NULL
)`

// Engine is a kv.Engine backed by a SQLite file. Like the teacher's
// dialect/sql.Driver, it holds a single *sql.DB and lets every operation go
// through it directly rather than pooling a bespoke connection type.
type Engine struct {
	db *sql.DB
}

var _ kv.Engine = (*Engine)(nil)

// Open opens (creating if absent) the SQLite file at path and ensures the
// key/value table exists.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, rack.NewIOError("sqlitekv.Open", err)
	}
	e := &Engine{db: db}
	if err := e.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}

// OpenDB wraps an already-open *sql.DB, the same "OpenDB" escape hatch the
// teacher's dialect/sql package offers for callers that configure their own
// connection (and what the engine's fault-injection tests use to attach a
// go-sqlmock driver in place of a real file).
func OpenDB(db *sql.DB) (*Engine, error) {
	e := &Engine{db: db}
	if err := e.migrate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) migrate() error {
	if _, err := e.db.ExecContext(context.Background(), schemaDDL); err != nil {
		return rack.NewIOError("sqlitekv.migrate", err)
	}
	return nil
}

// Get returns the value stored under key.
func (e *Engine) Get(key string) ([]byte, bool, error) {
	row := e.db.QueryRowContext(context.Background(), `SELECT value FROM rack_kv WHERE key = ?`, key)
	var v []byte
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, rack.NewIOError("sqlitekv.Get", err)
	}
	return v, true, nil
}

// Put upserts value under key without disturbing its row's id — and so its
// position in an id-ordered IterKeys — when the key already exists.
func (e *Engine) Put(key string, value []byte) error {
	_, err := e.db.ExecContext(context.Background(),
		`INSERT INTO rack_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return rack.NewIOError("sqlitekv.Put", err)
	}
	return nil
}

// Delete removes key, if present.
func (e *Engine) Delete(key string) error {
	if _, err := e.db.ExecContext(context.Background(), `DELETE FROM rack_kv WHERE key = ?`, key); err != nil {
		return rack.NewIOError("sqlitekv.Delete", err)
	}
	return nil
}

// IterKeys returns every key ordered by original insertion (the
// AUTOINCREMENT id), never by the key text itself.
func (e *Engine) IterKeys() ([]string, error) {
	rows, err := e.db.QueryContext(context.Background(), `SELECT key FROM rack_kv ORDER BY id ASC`)
	if err != nil {
		return nil, rack.NewIOError("sqlitekv.IterKeys", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, rack.NewIOError("sqlitekv.IterKeys", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, rack.NewIOError("sqlitekv.IterKeys", err)
	}
	return out, nil
}

// Reorder rewrites the table so that id order matches keys, the "read,
// clear, and re-write in order" implementation of store.Sort (spec.md
// §4.7) against an engine that preserves order.
func (e *Engine) Reorder(keys []string) error {
	tx, err := e.db.BeginTx(context.Background(), nil)
	if err != nil {
		return rack.NewIOError("sqlitekv.Reorder", err)
	}
	defer tx.Rollback()

	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		row := tx.QueryRowContext(context.Background(), `SELECT value FROM rack_kv WHERE key = ?`, k)
		var v []byte
		if err := row.Scan(&v); err != nil {
			return rack.NewIOError("sqlitekv.Reorder", err)
		}
		values[k] = v
	}
	if _, err := tx.ExecContext(context.Background(), `DELETE FROM rack_kv`); err != nil {
		return rack.NewIOError("sqlitekv.Reorder", err)
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(context.Background(),
			`INSERT INTO rack_kv (key, value) VALUES (?, ?)`, k, values[k]); err != nil {
			return rack.NewIOError("sqlitekv.Reorder", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return rack.NewIOError("sqlitekv.Reorder", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return rack.NewIOError("sqlitekv.Close", err)
	}
	return nil
}

// PreservesOrder always reports true: SELECT ... ORDER BY id reconstructs
// insertion order exactly.
func (e *Engine) PreservesOrder() bool { return true }
