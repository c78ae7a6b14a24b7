package auth

import (
	"context"
	"errors"

	"github.com/vmunrayos/multi-workspace/internal/session"
)

// ErrInvalidCredentials is returned on any credential mismatch. It is
// deliberately generic: callers must not learn which field was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// CredentialVerifier validates credentials and manufactures a session
// record. Implementations return identity facts only; they never touch
// the session store and have no side effects.
type CredentialVerifier interface {
	// VerifyOTP validates a phone number / one-time-password pair and
	// returns an end-user record on success.
	VerifyOTP(ctx context.Context, phoneNumber, otp string) (*session.Record, error)

	// VerifyAdmin validates an admin email/password pair and returns
	// an admin record on success.
	VerifyAdmin(ctx context.Context, email, password string) (*session.Record, error)
}
