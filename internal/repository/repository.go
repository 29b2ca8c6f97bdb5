// Package repository defines the storage interfaces consumed by the
// service and auth layers. Concrete implementations live in subpackages
// (currently repository/sqlite).
package repository

import (
	"context"

	"github.com/connecther/connecther/internal/model"
)

// ProfileRepository is the persisted profile-record store.
//
// Records are opaque serialized units keyed by a stable identity key: the
// local strategy keeps the whole identity under one fixed key, the
// delegated strategy keeps one profile-extension record per provider
// subject id. Put fully replaces any existing record (last write wins —
// there is no field-level merge at this layer).
type ProfileRepository interface {
	// Get returns the record stored under key.
	// Returns an apperror.ErrNotFound error if no record exists.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the record under key, replacing any previous record.
	Put(ctx context.Context, key string, record []byte) error

	// Delete removes the record under key. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// DoctorFilter narrows a directory listing. Empty fields match everything;
// set fields are combined with AND.
type DoctorFilter struct {
	Zip       string
	Insurance string
	Specialty string
}

// DoctorRepository is the provider-directory store.
type DoctorRepository interface {
	ListDoctors(ctx context.Context, filter DoctorFilter) ([]model.Doctor, error)

	// SeedDoctors inserts the given doctors if the directory is empty.
	// Called once at startup; a non-empty directory is left untouched.
	SeedDoctors(ctx context.Context, doctors []model.Doctor) error
}
