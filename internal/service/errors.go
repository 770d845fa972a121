package service

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned while a lockout window is active.
	ErrAccountLocked = errors.New("account locked, try again later")
	// ErrNotFound means the referenced employee or payroll record is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthenticated means the session token is missing, unknown or expired.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden means the caller is authenticated but may not see the resource.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError lists the request fields that were missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// fieldCheck collects invalid field names.
type fieldCheck []string

func (c *fieldCheck) require(ok bool, field string) {
	if !ok {
		*c = append(*c, field)
	}
}

func (c fieldCheck) err() error {
	if len(c) == 0 {
		return nil
	}
	return &ValidationError{Fields: c}
}
