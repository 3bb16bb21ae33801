package srs

import "errors"

// Sentinel errors for the srs package. Check with errors.Is.
var (
	// ErrInvalidGrade rejects grades outside the 0-5 scale. This is a
	// contract violation by the caller, never silently clamped.
	ErrInvalidGrade = errors.New("srs: grade out of range 0-5")

	// ErrInvalidParams rejects tuning parameters that would break the
	// algorithm's invariants.
	ErrInvalidParams = errors.New("srs: invalid tuning parameters")
)
