package session

import (
	"context"
	"time"
)

// IdleTimeout is the fixed idle expiry shared by every store
// implementation: a session not read or touched for this long
// behaves as absent.
const IdleTimeout = 12 * time.Hour

// Store defines how sessions are persisted and resolved. Records are
// addressed exclusively by their unguessable cookie value; there is
// deliberately no listing or lookup-by-record-id operation.
type Store interface {
	// Create persists the record under a freshly minted cookie value
	// and returns it. Keys are never reused, even for the same
	// principal logging in twice.
	Create(ctx context.Context, r Record) (string, error)

	// Get resolves a cookie value to its record, applying idle expiry
	// first: an expired entry is evicted and reported as absent
	// (nil, nil). A successful read refreshes the idle clock.
	// Undecodable entries return ErrCorrupt.
	Get(ctx context.Context, cookieValue string) (*Record, error)

	// Touch refreshes the idle clock without reading the record.
	// Touching an absent or expired session is not an error.
	Touch(ctx context.Context, cookieValue string) error

	// Delete removes the session. Idempotent.
	Delete(ctx context.Context, cookieValue string) error
}
