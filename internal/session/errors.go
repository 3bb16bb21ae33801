package session

import "errors"

// Sentinel errors for the session package. Check with errors.Is.
var (
	// ErrNoItemsAvailable means the due queue was empty at session start
	// while the goals asked for at least one item. Expected condition:
	// the learner is up to date.
	ErrNoItemsAvailable = errors.New("session: no items available")

	// ErrUnknownItem rejects a result for an item that is not pending in
	// the session's snapshot. Guards against stale client state.
	ErrUnknownItem = errors.New("session: item not in session")

	// ErrSessionClosed rejects operations on a completed session.
	ErrSessionClosed = errors.New("session: session closed")
)
