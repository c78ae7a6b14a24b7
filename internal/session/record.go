package session

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrInvalidRecord = errors.New("session: invalid record")

// Record is the authenticated identity carried by a session.
// Exactly one of PhoneNumber/Email is populated, matching Role.
// Build records through NewUserRecord/NewAdminRecord only.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// NewUserRecord builds an end-user record (role "user", phone number set).
func NewUserRecord(id, name, phoneNumber string) (Record, error) {
	r := Record{
		ID:          id,
		Name:        name,
		Role:        RoleUser,
		PhoneNumber: phoneNumber,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// NewAdminRecord builds an admin record (role "admin", email set).
func NewAdminRecord(id, name, email string) (Record, error) {
	r := Record{
		ID:    id,
		Name:  name,
		Role:  RoleAdmin,
		Email: email,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate enforces the record shape, in particular the mutual
// exclusion of the role-specific fields. A record carrying both or
// neither of PhoneNumber/Email must never exist.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	switch r.Role {
	case RoleUser:
		if r.PhoneNumber == "" {
			return fmt.Errorf("%w: user record missing phone number", ErrInvalidRecord)
		}
		if r.Email != "" {
			return fmt.Errorf("%w: user record must not carry an email", ErrInvalidRecord)
		}
	case RoleAdmin:
		if r.Email == "" {
			return fmt.Errorf("%w: admin record missing email", ErrInvalidRecord)
		}
		if r.PhoneNumber != "" {
			return fmt.Errorf("%w: admin record must not carry a phone number", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRecord, r.Role)
	}
	return nil
}
