// Package sqlite implements the repository interfaces on SQLite.
//
// The database holds two tables:
//   - profiles: serialized profile records keyed by identity key
//   - doctors:  the provider directory
//
// A single *DB value implements every repository interface; the server
// owns it and closes it on shutdown.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

// New opens (creating if necessary) the database at dbPath, applies the
// connection pragmas, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// migrate creates the schema. Statements are idempotent so running them on
// every startup is safe.
func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			key        TEXT PRIMARY KEY,
			record     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS doctors (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			specialty      TEXT NOT NULL,
			city           TEXT NOT NULL DEFAULT '',
			state          TEXT NOT NULL DEFAULT '',
			zip            TEXT NOT NULL DEFAULT '',
			accepts        TEXT NOT NULL DEFAULT '',
			telehealth     INTEGER NOT NULL DEFAULT 0,
			distance_miles REAL NOT NULL DEFAULT 0,
			rating         REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_specialty ON doctors(specialty)`,
		`CREATE INDEX IF NOT EXISTS idx_doctors_zip ON doctors(zip)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return nil
}

// Close closes the underlying connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}
