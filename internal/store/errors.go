package store

import "errors"

// Sentinel errors for the store package. Check with errors.Is.
var (
	// ErrVersionConflict means the record was modified since the caller
	// read it. The caller must re-read and reapply.
	ErrVersionConflict = errors.New("store: version conflict")

	// ErrDuplicateWrite means the review key was already applied to the
	// item. The grade must not be applied a second time.
	ErrDuplicateWrite = errors.New("store: duplicate review write")

	// ErrInvalidRecord rejects a Put of a record that violates the
	// MemoryItem invariants.
	ErrInvalidRecord = errors.New("store: invalid record")
)
