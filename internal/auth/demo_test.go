package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunrayos/multi-workspace/internal/auth"
	"github.com/vmunrayos/multi-workspace/internal/session"
)

func newVerifier(t *testing.T) *auth.DemoVerifier {
	t.Helper()
	v, err := auth.NewDemoVerifier()
	require.NoError(t, err)
	return v
}

func TestVerifyOTP(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	r, err := v.VerifyOTP(ctx, "5551234567", "246810")
	require.NoError(t, err)
	assert.Equal(t, session.RoleUser, r.Role)
	assert.Equal(t, "user-001", r.ID)
	assert.Equal(t, "John Doe", r.Name)
	assert.Equal(t, "5551234567", r.PhoneNumber)
	assert.Empty(t, r.Email)
	assert.NoError(t, r.Validate())
}

func TestVerifyOTPMismatch(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	cases := [][2]string{
		{"5551234567", "000000"}, // wrong otp
		{"5550000000", "246810"}, // wrong phone
		{"", ""},
	}
	for _, c := range cases {
		_, err := v.VerifyOTP(ctx, c[0], c[1])
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
}

func TestVerifyAdmin(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	// Email comparison is case-insensitive; the submitted casing is
	// what lands in the record.
	r, err := v.VerifyAdmin(ctx, "ADMIN@example.com", "SuperSecure123!")
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, r.Role)
	assert.Equal(t, "admin-001", r.ID)
	assert.Equal(t, "Admin", r.Name)
	assert.Equal(t, "ADMIN@example.com", r.Email)
	assert.Empty(t, r.PhoneNumber)
	assert.NoError(t, r.Validate())
}

func TestVerifyAdminMismatch(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	_, err := v.VerifyAdmin(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = v.VerifyAdmin(ctx, "other@example.com", "SuperSecure123!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Password comparison is case-sensitive.
	_, err = v.VerifyAdmin(ctx, "admin@example.com", "supersecure123!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
