// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The run history is a single-user, single-process log that lives next to the
// client. An embedded database is exactly that: one file, no server to run.
// Tests use ":memory:" for a throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite — no C compiler, no CGo, and the
// client still cross-compiles to every platform Go supports.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.RunRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the history database at dbPath and runs migrations.
//
// dbPath examples:
//   - "algotest-history.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// The history is written by one process at a time, so one connection is
	// all we need and it keeps in-memory databases coherent.
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path fails here, not on the
	// first insert.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets a second client instance read the history while this one writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Two client instances sharing one file briefly contend for the write
	// lock; wait for it instead of failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			algorithm_id   INTEGER NOT NULL,
			algorithm_name TEXT NOT NULL DEFAULT '',
			raw_input      TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			input          TEXT NOT NULL DEFAULT '',
			output         TEXT NOT NULL DEFAULT '',
			execution_time TEXT NOT NULL DEFAULT '',
			error          TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_algorithm_id ON runs(algorithm_id);
	`)
	if err != nil {
		return fmt.Errorf("creating runs algorithm_id index: %w", err)
	}

	return nil
}
