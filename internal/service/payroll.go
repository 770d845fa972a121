package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/GophPayroll/internal/events"
	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/repository"
	"go.uber.org/zap"
)

// PayrollInput carries raw payroll parameters as decoded from a request.
// Absent or non-numeric values count as zero.
type PayrollInput struct {
	Basic     any `json:"basic"`
	HRA       any `json:"hra"`
	Allowance any `json:"allowance"`
	PF        any `json:"pf"`
	Tax       any `json:"tax"`
}

// Statement pairs stored payroll parameters with the derived salary figures.
type Statement struct {
	models.Payroll
	Salary payroll.Breakdown `json:"salary"`
}

// Payslip is a rendered payslip document.
type Payslip struct {
	Filename string
	Body     []byte
}

// PayrollService saves payroll parameters and derives salaries and payslips
// from them with the payroll calculator.
type PayrollService struct {
	employees EmployeeRepository
	payroll   PayrollRepository
	publisher EventPublisher
	log       *zap.Logger
}

// NewPayrollService constructs a PayrollService. publisher and log may be nil.
func NewPayrollService(employees EmployeeRepository, payrolls PayrollRepository, publisher EventPublisher, log *zap.Logger) *PayrollService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PayrollService{employees: employees, payroll: payrolls, publisher: publisher, log: log}
}

// Save upserts the payroll parameters of an existing employee and returns
// the stored values with their breakdown.
func (s *PayrollService) Save(ctx context.Context, code string, in PayrollInput) (Statement, error) {
	if _, err := s.findEmployee(ctx, code); err != nil {
		return Statement{}, err
	}

	p := models.Payroll{
		EmployeeCode: code,
		Basic:        payroll.Coerce(in.Basic),
		HRA:          payroll.Coerce(in.HRA),
		Allowance:    payroll.Coerce(in.Allowance),
		PF:           payroll.Coerce(in.PF),
		Tax:          payroll.Coerce(in.Tax),
	}
	st := Statement{Payroll: p, Salary: payroll.ComputeFor(p)}
	if err := s.payroll.UpsertByEmployeeCode(ctx, code, p); err != nil {
		return Statement{}, fmt.Errorf("save payroll: %w", err)
	}

	publishEvent(ctx, s.publisher, s.log, events.PayrollSaved, st)
	return st, nil
}

// Get returns the stored payroll parameters of an employee.
func (s *PayrollService) Get(ctx context.Context, code string) (*models.Payroll, error) {
	p, err := s.payroll.FindByEmployeeCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns every stored payroll record with its computed salary.
func (s *PayrollService) List(ctx context.Context) ([]Statement, error) {
	records, err := s.payroll.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Statement, 0, len(records))
	for _, p := range records {
		out = append(out, Statement{Payroll: p, Salary: payroll.ComputeFor(p)})
	}
	return out, nil
}

// Salary computes the breakdown for the employee with code. A non-nil
// attendance pro-rates the basic salary. Non-admin callers may only
// read their own salary.
func (s *PayrollService) Salary(ctx context.Context, who models.Identity, code string, attendance *int) (payroll.Breakdown, error) {
	_, p, err := s.load(ctx, who, code)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	return compute(*p, attendance), nil
}

// Payslip renders the text payslip for the employee with code under the same
// access rules as Salary.
func (s *PayrollService) Payslip(ctx context.Context, who models.Identity, code string, attendance *int) (Payslip, error) {
	e, p, err := s.load(ctx, who, code)
	if err != nil {
		return Payslip{}, err
	}
	b := compute(*p, attendance)
	return Payslip{
		Filename: payroll.PayslipFilename(*e),
		Body:     payroll.RenderPayslip(*e, *p, b),
	}, nil
}

func compute(p models.Payroll, attendance *int) payroll.Breakdown {
	if attendance != nil {
		return payroll.ComputeProrated(p, *attendance)
	}
	return payroll.ComputeFor(p)
}

func (s *PayrollService) load(ctx context.Context, who models.Identity, code string) (*models.Employee, *models.Payroll, error) {
	e, err := s.findEmployee(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if !who.IsAdmin() && !strings.EqualFold(who.Email, e.Email) {
		return nil, nil, ErrForbidden
	}

	p, err := s.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return e, p, nil
}

func (s *PayrollService) findEmployee(ctx context.Context, code string) (*models.Employee, error) {
	e, err := s.employees.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	return e, nil
}
