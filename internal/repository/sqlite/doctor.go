package sqlite

import (
	"context"
	"fmt"

	"github.com/connecther/connecther/internal/model"
	"github.com/connecther/connecther/internal/repository"
)

// compile-time check that *DB implements repository.DoctorRepository
var _ repository.DoctorRepository = (*DB)(nil)

// ListDoctors returns directory entries matching the filter, ordered by
// name. Empty filter fields match everything; set fields are ANDed.
//
// The query is built incrementally with placeholders — never by
// concatenating user input into the SQL string.
func (db *DB) ListDoctors(ctx context.Context, filter repository.DoctorFilter) ([]model.Doctor, error) {
	query := `SELECT id, name, specialty, city, state, zip, accepts, telehealth, distance_miles, rating
	          FROM doctors WHERE 1=1`
	args := []any{}

	if filter.Zip != "" {
		query += ` AND zip = ?`
		args = append(args, filter.Zip)
	}
	if filter.Insurance != "" {
		query += ` AND accepts = ?`
		args = append(args, filter.Insurance)
	}
	if filter.Specialty != "" {
		query += ` AND specialty = ?`
		args = append(args, filter.Specialty)
	}

	query += ` ORDER BY name`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing doctors: %w", err)
	}
	defer rows.Close()

	doctors := []model.Doctor{}
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Specialty,
			&d.City,
			&d.State,
			&d.Zip,
			&d.Accepts,
			&d.Telehealth,
			&d.DistanceMiles,
			&d.Rating,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning doctor row: %w", err)
		}
		doctors = append(doctors, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating doctor rows: %w", err)
	}

	return doctors, nil
}

// SeedDoctors inserts the given doctors if the directory is empty.
// A non-empty directory is left untouched so redeploys don't duplicate
// or clobber entries.
func (db *DB) SeedDoctors(ctx context.Context, doctors []model.Doctor) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: counting doctors: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range doctors {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO doctors (id, name, specialty, city, state, zip, accepts, telehealth, distance_miles, rating)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID,
			d.Name,
			d.Specialty,
			d.City,
			d.State,
			d.Zip,
			d.Accepts,
			d.Telehealth,
			d.DistanceMiles,
			d.Rating,
		)
		if err != nil {
			return fmt.Errorf("sqlite: seeding doctor %q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing seed transaction: %w", err)
	}

	return nil
}
