package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophPayroll/internal/models"
)

const employeeColumns = `emp_code, full_name, email, phone, department, date_of_joining, attendance`

// PostgresEmployeeRepository stores employees in the employees table.
type PostgresEmployeeRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresEmployeeRepository creates a new PostgresEmployeeRepository using the provided *sql.DB.
func NewPostgresEmployeeRepository(db *sql.DB) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (models.Employee, error) {
	var (
		e          models.Employee
		attendance sql.NullInt64
	)
	if err := row.Scan(&e.Code, &e.FullName, &e.Email, &e.Phone, &e.Department, &e.DateOfJoining, &attendance); err != nil {
		return e, err
	}
	if attendance.Valid {
		days := int(attendance.Int64)
		e.Attendance = &days
	}
	return e, nil
}

// Create inserts a new employee. It returns ErrAlreadyExists when the code is taken.
func (r *PostgresEmployeeRepository) Create(ctx context.Context, e models.Employee) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (emp_code) DO NOTHING
	`, e.Code, e.FullName, e.Email, e.Phone, e.Department, e.DateOfJoining, e.Attendance)
	if err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// FindByCode returns the employee with the given code or ErrNotFound.
func (r *PostgresEmployeeRepository) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE emp_code = $1`, code)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByCode: %w", err)
	}
	return &e, nil
}

// FindAll returns every employee ordered by code.
func (r *PostgresEmployeeRepository) FindAll(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY emp_code`)
	if err != nil {
		return nil, fmt.Errorf("FindAll: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindAll: %w", err)
	}
	return employees, nil
}

// Update overwrites the employee identified by e.Code or returns ErrNotFound.
func (r *PostgresEmployeeRepository) Update(ctx context.Context, e models.Employee) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE employees
		   SET full_name = $2, email = $3, phone = $4, department = $5, date_of_joining = $6, attendance = $7
		 WHERE emp_code = $1
	`, e.Code, e.FullName, e.Email, e.Phone, e.Department, e.DateOfJoining, e.Attendance)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByCode removes the employee or returns ErrNotFound.
func (r *PostgresEmployeeRepository) DeleteByCode(ctx context.Context, code string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM employees WHERE emp_code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
