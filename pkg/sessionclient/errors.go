package sessionclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrOperationInFlight is returned when a login or logout is
	// attempted while another one is still outstanding.
	ErrOperationInFlight = errors.New("sessionclient: login or logout already in progress")

	// ErrInvalidCredentials is the gateway's generic credential
	// rejection. It never indicates which field was wrong.
	ErrInvalidCredentials = errors.New("sessionclient: invalid credentials")
)

// ValidationError carries the gateway's per-field validation detail.
// The caller can correct the input and retry.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "sessionclient: validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "sessionclient: validation failed: " + strings.Join(parts, "; ")
}

// TransportError covers everything that is neither success, absence,
// nor a credential/validation outcome: network failures and unexpected
// gateway statuses. Surfaced to the end user as "service unavailable".
type TransportError struct {
	// StatusCode is 0 when the request never completed.
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sessionclient: request failed: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("sessionclient: gateway returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sessionclient: gateway returned %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }
