// Package store holds each learner's per-item scheduling records.
//
// The store is the only shared mutable resource in the system. Both
// backends guarantee per-item single-writer semantics: a read-modify-write
// for one item never interleaves with another for the same item, while
// different items and different learners proceed in parallel. Lost
// updates are made impossible by optimistic concurrency on the record's
// version field.
package store

import (
	"context"
	"time"

	"github.com/example/vocabsrs/pkg/models"
)

// Store is the persistence contract for memory items. Backends are
// pluggable; the session manager and queue builder depend only on this
// interface.
type Store interface {
	// Get returns the record for (learnerID, itemID), creating and
	// persisting the default record if none exists.
	Get(ctx context.Context, learnerID, itemID string) (models.MemoryItem, error)

	// Put persists the record atomically. The record's Version must
	// match the stored version (zero for a record never persisted) or
	// ErrVersionConflict is returned. A non-empty reviewKey is an
	// idempotency key: replaying the key most recently applied to the
	// item returns ErrDuplicateWrite instead of applying the grade
	// twice. On success the stored record, with its bumped version,
	// is returned.
	Put(ctx context.Context, item models.MemoryItem, reviewKey string) (models.MemoryItem, error)

	// ListDue returns every record for the learner that is due at asOf:
	// phase New, or next review time at or before asOf. Calling twice
	// with the same asOf and no intervening writes returns the same set.
	ListDue(ctx context.Context, learnerID string, asOf time.Time) ([]models.MemoryItem, error)
}
