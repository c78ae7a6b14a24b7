package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt reports a stored session value that can no longer be
// decoded into a valid Record. The gateway treats it as "no session";
// it must never be fatal.
var ErrCorrupt = errors.New("session: corrupt record")

// EncodeRecord serializes a record to the store's string representation.
func EncodeRecord(r Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal record: %w", err)
	}
	return string(data), nil
}

// DecodeRecord is the inverse of EncodeRecord. Undecodable input and
// records violating the role-exclusivity invariant both fail closed
// with ErrCorrupt.
func DecodeRecord(encoded string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(encoded), &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := r.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return r, nil
}
