package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/connecther/connecther/internal/apperror"
	"github.com/connecther/connecther/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

// Get returns the record stored under key, verbatim as it was written.
// Returns apperror.ErrNotFound if no record exists.
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var record string

	err := db.conn.QueryRowContext(ctx,
		`SELECT record FROM profiles WHERE key = ?`, key,
	).Scan(&record)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", key)
		}
		return nil, fmt.Errorf("sqlite: getting profile %q: %w", key, err)
	}

	return []byte(record), nil
}

// Put stores record under key, fully replacing any previous record.
//
// ON CONFLICT DO UPDATE gives last-write-wins semantics in one statement:
// the stored unit is always exactly what the most recent caller wrote.
func (db *DB) Put(ctx context.Context, key string, record []byte) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (key, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		key, string(record), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: putting profile %q: %w", key, err)
	}

	return nil
}

// Delete removes the record under key. Deleting a missing key is a no-op.
func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM profiles WHERE key = ?`, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting profile %q: %w", key, err)
	}

	return nil
}
