// Package models defines the core data structures for credentials,
// employees and payroll parameters.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the authorization level attached to an authenticated identity.
type Role string

const (
	// RoleAdmin may create, update and delete employees and payroll records.
	RoleAdmin Role = "admin"
	// RoleEmployee may read the employee list and its own salary figures.
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User represents a credential record used to log in.
type User struct {
	// Email is the unique login identifier.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// Role is the authorization level of the user.
	Role Role
	// FailedAttempts counts consecutive failed logins since the last success or lockout.
	FailedAttempts int
	// LockUntil is the end of the current lockout window, nil when unlocked.
	LockUntil *time.Time
}

// Identity is the authenticated principal bound to a session.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Employee is a member of staff, keyed by its business code.
type Employee struct {
	Code          string    `json:"empCode"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Department    string    `json:"department"`
	DateOfJoining time.Time `json:"dateOfJoining"`
	// Attendance is the number of days worked in the current period, when tracked.
	Attendance *int `json:"attendance,omitempty"`
}

// Payroll holds the salary parameters of one employee.
// HRA, Allowance, PF and Tax are percentages of Basic.
type Payroll struct {
	EmployeeCode string          `json:"empCode"`
	Basic        decimal.Decimal `json:"basic"`
	HRA          decimal.Decimal `json:"hra"`
	Allowance    decimal.Decimal `json:"allowance"`
	PF           decimal.Decimal `json:"pf"`
	Tax          decimal.Decimal `json:"tax"`
}
