package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophPayroll/internal/models"
)

// PostgresPayrollRepository stores payroll parameters, one row per employee.
type PostgresPayrollRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresPayrollRepository creates a new PostgresPayrollRepository using the provided *sql.DB.
func NewPostgresPayrollRepository(db *sql.DB) *PostgresPayrollRepository {
	return &PostgresPayrollRepository{DB: db}
}

// FindByEmployeeCode returns the payroll parameters of an employee or ErrNotFound.
func (r *PostgresPayrollRepository) FindByEmployeeCode(ctx context.Context, code string) (*models.Payroll, error) {
	var p models.Payroll
	err := r.DB.QueryRowContext(ctx, `
		SELECT emp_code, basic, hra, allowance, pf, tax FROM payroll WHERE emp_code = $1
	`, code).Scan(&p.EmployeeCode, &p.Basic, &p.HRA, &p.Allowance, &p.PF, &p.Tax)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByEmployeeCode: %w", err)
	}
	return &p, nil
}

// FindAll returns the payroll parameters of every employee ordered by code.
func (r *PostgresPayrollRepository) FindAll(ctx context.Context) ([]models.Payroll, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT emp_code, basic, hra, allowance, pf, tax FROM payroll ORDER BY emp_code
	`)
	if err != nil {
		return nil, fmt.Errorf("FindAll payroll: %w", err)
	}
	defer rows.Close()

	list := []models.Payroll{}
	for rows.Next() {
		var p models.Payroll
		if err := rows.Scan(&p.EmployeeCode, &p.Basic, &p.HRA, &p.Allowance, &p.PF, &p.Tax); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindAll payroll: %w", err)
	}
	return list, nil
}

// UpsertByEmployeeCode inserts the parameters or overwrites the existing row.
func (r *PostgresPayrollRepository) UpsertByEmployeeCode(ctx context.Context, code string, p models.Payroll) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO payroll (emp_code, basic, hra, allowance, pf, tax)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (emp_code) DO UPDATE SET
			basic = EXCLUDED.basic,
			hra = EXCLUDED.hra,
			allowance = EXCLUDED.allowance,
			pf = EXCLUDED.pf,
			tax = EXCLUDED.tax
	`, code, p.Basic, p.HRA, p.Allowance, p.PF, p.Tax)
	if err != nil {
		return fmt.Errorf("upsert payroll: %w", err)
	}
	return nil
}

// DeleteByEmployeeCode removes the payroll row of an employee. Missing rows are ignored.
func (r *PostgresPayrollRepository) DeleteByEmployeeCode(ctx context.Context, code string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM payroll WHERE emp_code = $1`, code); err != nil {
		return fmt.Errorf("delete payroll: %w", err)
	}
	return nil
}
