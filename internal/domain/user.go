package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrForbidden    = errors.New("insufficient role")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotRegistered = fmt.Errorf("%w: email not registered", ErrInvalidCredentials)
	ErrWrongPassword      = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RolePolicy selects where an authorization decision reads the caller's role from.
type RolePolicy int

const (
	// PolicyTokenClaim trusts the role embedded in the token. A role change
	// is not seen until the holder signs in again.
	PolicyTokenClaim RolePolicy = iota
	// PolicyFreshLookup re-reads the role from the user store.
	PolicyFreshLookup
)

func (p RolePolicy) String() string {
	if p == PolicyFreshLookup {
		return "fresh_lookup"
	}
	return "token_claim"
}

type User struct {
	ID       string
	Email    string
	UserName string
	// Empty for accounts created through an OAuth provider.
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// NormalizeEmail is applied before every store access so that lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
