// Package store persists disaster records keyed by their codec-produced
// identifiers. Two implementations share one contract: an in-memory store
// for development and tests, and a Postgres store for real deployments.
package store

import (
	"context"
	"errors"

	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

var (
	// ErrDuplicateIdentifier is returned by Insert when a record with the
	// same identifier already exists. Two distinct attribute tuples must
	// never collapse to one identifier, so collisions are surfaced rather
	// than upserted.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrNotFound is returned when no record carries the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrStateConflict is returned by TransitionState when the record is
	// not in the expected source state.
	ErrStateConflict = errors.New("record not in expected state")
)

// RecordStore is the persistence contract required by the ingestion
// pipeline and the retention manager. Insert and TransitionState must be
// atomic so that ingestion and retention sweeps can run concurrently.
type RecordStore interface {
	// Insert persists a new active record, stamping created_at,
	// updated_at, and last_accessed_at. Fails with ErrDuplicateIdentifier
	// if the identifier is already present.
	Insert(ctx context.Context, record domain.DisasterRecord) (domain.DisasterRecord, error)

	// Get returns the record and updates its last_accessed_at.
	Get(ctx context.Context, id string) (domain.DisasterRecord, error)

	// List returns the total record count and a page of records ordered
	// by creation time, newest first.
	List(ctx context.Context, limit, offset int) (int, []domain.DisasterRecord, error)

	// Delete removes a record outright, regardless of state.
	Delete(ctx context.Context, id string) error

	// TransitionState atomically moves a record from one state to the
	// next. Transitions to StatePurged physically remove the record.
	// Fails with ErrStateConflict when the record is not in the expected
	// source state, ErrNotFound when it does not exist.
	TransitionState(ctx context.Context, id string, from, to domain.State) error

	// Snapshot returns a stable copy of all records for the retention
	// sweep. Records written after the snapshot are picked up next run.
	Snapshot(ctx context.Context) ([]domain.DisasterRecord, error)
}
