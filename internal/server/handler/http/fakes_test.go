package http

import (
	"context"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/payroll"
	"github.com/atinyakov/GophPayroll/internal/service"
)

// fakeAuthService implements AuthService and middleware.IdentityResolver for testing.
type fakeAuthService struct {
	registerErr error
	authResult  service.AuthResult
	authErr     error
	logoutToken string
	count       int64
	countErr    error
	sessions    map[string]models.Identity
}

func (f *fakeAuthService) Register(context.Context, string, string) error {
	return f.registerErr
}

func (f *fakeAuthService) Authenticate(context.Context, string, string) (service.AuthResult, error) {
	return f.authResult, f.authErr
}

func (f *fakeAuthService) Logout(_ context.Context, token string) error {
	f.logoutToken = token
	return nil
}

func (f *fakeAuthService) CountUsers(context.Context) (int64, error) {
	return f.count, f.countErr
}

func (f *fakeAuthService) Identity(_ context.Context, token string) (models.Identity, error) {
	id, ok := f.sessions[token]
	if !ok {
		return models.Identity{}, service.ErrUnauthenticated
	}
	return id, nil
}

// fakeEmployeeService implements EmployeeService for testing.
type fakeEmployeeService struct {
	employees   map[string]models.Employee
	createErr   error
	gotPassword string
}

func (f *fakeEmployeeService) Create(_ context.Context, e models.Employee, password string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.gotPassword = password
	f.employees[e.Code] = e
	return nil
}

func (f *fakeEmployeeService) Get(_ context.Context, code string) (*models.Employee, error) {
	e, ok := f.employees[code]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEmployeeService) List(context.Context) ([]models.Employee, error) {
	list := []models.Employee{}
	for _, e := range f.employees {
		list = append(list, e)
	}
	return list, nil
}

func (f *fakeEmployeeService) Update(_ context.Context, code string, e models.Employee) error {
	if _, ok := f.employees[code]; !ok {
		return service.ErrNotFound
	}
	e.Code = code
	f.employees[code] = e
	return nil
}

func (f *fakeEmployeeService) Delete(_ context.Context, code string) error {
	if _, ok := f.employees[code]; !ok {
		return service.ErrNotFound
	}
	delete(f.employees, code)
	return nil
}

// fakePayrollService implements PayrollService for testing.
type fakePayrollService struct {
	saved         service.PayrollInput
	saveErr       error
	statement     service.Statement
	salary        payroll.Breakdown
	slip          service.Payslip
	err           error
	gotWho        models.Identity
	gotAttendance *int
}

func (f *fakePayrollService) Save(_ context.Context, _ string, in service.PayrollInput) (service.Statement, error) {
	f.saved = in
	return f.statement, f.saveErr
}

func (f *fakePayrollService) Get(context.Context, string) (*models.Payroll, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := f.statement.Payroll
	return &p, nil
}

func (f *fakePayrollService) List(context.Context) ([]service.Statement, error) {
	return []service.Statement{f.statement}, f.err
}

func (f *fakePayrollService) Salary(_ context.Context, who models.Identity, _ string, attendance *int) (payroll.Breakdown, error) {
	f.gotWho, f.gotAttendance = who, attendance
	return f.salary, f.err
}

func (f *fakePayrollService) Payslip(_ context.Context, who models.Identity, _ string, attendance *int) (service.Payslip, error) {
	f.gotWho, f.gotAttendance = who, attendance
	return f.slip, f.err
}
