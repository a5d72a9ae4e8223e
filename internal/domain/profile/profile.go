package profile

import (
	"fmt"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
)

// Role is the account capability tag.
type Role string

const (
	// RoleCustomer marks an account looking for care.
	RoleCustomer Role = "CUSTOMER"
	// RoleCaregiver marks an account offering care.
	RoleCaregiver Role = "CAREGIVER"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleCaregiver:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, s)
}

// Caller identifies the authenticated user behind a request. It is passed
// explicitly into every entry point; nothing reads ambient request state.
type Caller struct {
	UserID string
	Role   Role
}

// Validate checks that the caller is fully identified.
func (c Caller) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: caller user id is required", domain.ErrInvalidInput)
	}
	if _, err := ParseRole(string(c.Role)); err != nil {
		return err
	}
	return nil
}

// Account is the common account projection shared by both roles.
type Account struct {
	ID            string
	Name          string
	Email         string
	Image         string
	ContactNumber string
}

// Address is a user's postal address.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// View is the role-keyed profile projection: a discriminated union selected
// at the data-access boundary. Caregiver is set only for RoleCaregiver.
type View struct {
	Role      Role
	Account   Account
	Address   *Address
	Caregiver *caregiver.Profile
}
