package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/atinyakov/GophPayroll/internal/events"
	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/repository"
	"go.uber.org/zap"
)

// EmployeeRepository defines the employee store operations.
type EmployeeRepository interface {
	Create(ctx context.Context, e models.Employee) error
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	FindAll(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, e models.Employee) error
	DeleteByCode(ctx context.Context, code string) error
}

// PayrollRepository defines the payroll parameter store operations.
type PayrollRepository interface {
	FindByEmployeeCode(ctx context.Context, code string) (*models.Payroll, error)
	FindAll(ctx context.Context) ([]models.Payroll, error)
	UpsertByEmployeeCode(ctx context.Context, code string, p models.Payroll) error
	DeleteByEmployeeCode(ctx context.Context, code string) error
}

// CredentialManager creates and removes the login linked to an employee.
// AuthService implements it.
type CredentialManager interface {
	CreateCredential(ctx context.Context, email, password string, role models.Role) error
	DeleteCredential(ctx context.Context, email string) error
}

// EmployeeService manages employee records together with their payroll
// parameters and linked credentials.
type EmployeeService struct {
	employees   EmployeeRepository
	payroll     PayrollRepository
	credentials CredentialManager
	publisher   EventPublisher
	log         *zap.Logger
}

// NewEmployeeService constructs an EmployeeService. publisher and log may be nil.
func NewEmployeeService(
	employees EmployeeRepository,
	payroll PayrollRepository,
	credentials CredentialManager,
	publisher EventPublisher,
	log *zap.Logger,
) *EmployeeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmployeeService{
		employees:   employees,
		payroll:     payroll,
		credentials: credentials,
		publisher:   publisher,
		log:         log,
	}
}

func validateEmployee(e models.Employee) error {
	var check fieldCheck
	check.require(printable(e.Code), "empCode")
	check.require(printable(e.FullName), "fullName")
	check.require(printable(e.Email), "email")
	check.require(printable(e.Phone), "phone")
	check.require(printable(e.Department), "department")
	check.require(!e.DateOfJoining.IsZero(), "dateOfJoining")
	check.require(e.Attendance == nil || *e.Attendance >= 0, "attendance")
	return check.err()
}

// printable reports whether s is non-empty and free of control characters.
// Employee fields end up on single lines of the payslip.
func printable(s string) bool {
	return s != "" && strings.IndexFunc(s, unicode.IsControl) < 0
}

func trimEmployee(e models.Employee) models.Employee {
	e.Code = strings.TrimSpace(e.Code)
	e.FullName = strings.TrimSpace(e.FullName)
	e.Email = normalizeEmail(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Department = strings.TrimSpace(e.Department)
	return e
}

// Create stores a new employee. When password is not empty an employee
// credential is created for the employee's email; if that fails the
// employee is removed again.
func (s *EmployeeService) Create(ctx context.Context, e models.Employee, password string) error {
	e = trimEmployee(e)
	if err := validateEmployee(e); err != nil {
		return err
	}

	err := s.employees.Create(ctx, e)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}

	if password != "" {
		if err := s.credentials.CreateCredential(ctx, e.Email, password, models.RoleEmployee); err != nil {
			if rbErr := s.employees.DeleteByCode(ctx, e.Code); rbErr != nil {
				s.log.Error("failed to roll back employee", zap.String("emp_code", e.Code), zap.Error(rbErr))
			}
			return err
		}
	}

	publishEvent(ctx, s.publisher, s.log, events.EmployeeCreated, e)
	return nil
}

// Get returns the employee with code or ErrNotFound.
func (s *EmployeeService) Get(ctx context.Context, code string) (*models.Employee, error) {
	e, err := s.employees.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

// List returns all employees.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	return s.employees.FindAll(ctx)
}

// Update replaces the employee identified by code. The email is fixed at
// creation since the employee's credential is keyed by it.
func (s *EmployeeService) Update(ctx context.Context, code string, e models.Employee) error {
	e.Code = code
	e = trimEmployee(e)
	if err := validateEmployee(e); err != nil {
		return err
	}

	current, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if normalizeEmail(current.Email) != e.Email {
		return &ValidationError{Fields: []string{"email"}}
	}

	err = s.employees.Update(ctx, e)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes the employee, then its payroll parameters and its employee
// credential.
func (s *EmployeeService) Delete(ctx context.Context, code string) error {
	e, err := s.Get(ctx, code)
	if err != nil {
		return err
	}

	err = s.employees.DeleteByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	// A payroll row left behind here is an orphan and gets purged by the
	// cleanup job.
	if err := s.payroll.DeleteByEmployeeCode(ctx, code); err != nil {
		s.log.Warn("failed to delete payroll of removed employee", zap.String("emp_code", code), zap.Error(err))
	}
	if err := s.credentials.DeleteCredential(ctx, e.Email); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	publishEvent(ctx, s.publisher, s.log, events.EmployeeDeleted, map[string]string{
		"empCode": e.Code,
		"email":   e.Email,
	})
	return nil
}
