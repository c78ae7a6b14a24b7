package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vmunrayos/multi-workspace/internal/session"
)

// Demo credential set standing in for a real identity provider.
const (
	demoOTPPhone = "5551234567"
	demoOTPCode  = "246810"

	demoAdminEmail    = "admin@example.com"
	demoAdminPassword = "SuperSecure123!"

	demoUserID    = "user-001"
	demoUserName  = "John Doe"
	demoAdminID   = "admin-001"
	demoAdminName = "Admin"
)

// DemoVerifier validates against the fixed demo credential set. The
// admin password is held only as a bcrypt hash computed at startup, so
// the verification path matches what a real verifier would do.
type DemoVerifier struct {
	adminPasswordHash []byte
}

func NewDemoVerifier() (*DemoVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword(
		[]byte(demoAdminPassword),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash demo password: %w", err)
	}
	return &DemoVerifier{adminPasswordHash: hash}, nil
}

func (v *DemoVerifier) VerifyOTP(
	_ context.Context,
	phoneNumber string,
	otp string,
) (*session.Record, error) {

	// Compare both fields unconditionally so the response never hints
	// at which one was wrong.
	phoneOK := subtle.ConstantTimeCompare([]byte(phoneNumber), []byte(demoOTPPhone))
	otpOK := subtle.ConstantTimeCompare([]byte(otp), []byte(demoOTPCode))

	if phoneOK&otpOK != 1 {
		return nil, ErrInvalidCredentials
	}

	r, err := session.NewUserRecord(demoUserID, demoUserName, phoneNumber)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (v *DemoVerifier) VerifyAdmin(
	_ context.Context,
	email string,
	password string,
) (*session.Record, error) {

	if !strings.EqualFold(email, demoAdminEmail) {
		// Burn a hash comparison anyway; hide whether the email exists.
		_ = bcrypt.CompareHashAndPassword(v.adminPasswordHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(
		v.adminPasswordHash,
		[]byte(password),
	); err != nil {
		return nil, ErrInvalidCredentials
	}

	r, err := session.NewAdminRecord(demoAdminID, demoAdminName, email)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
