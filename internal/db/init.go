// Package db opens the PostgreSQL database, creates the schema and runs
// periodic maintenance jobs against it.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    password_hash BYTEA NOT NULL,
    role TEXT NOT NULL DEFAULT 'employee',
    failed_attempts INTEGER NOT NULL DEFAULT 0,
    lock_until TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS employees (
    emp_code TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    department TEXT NOT NULL,
    date_of_joining DATE NOT NULL,
    attendance INTEGER
);

CREATE TABLE IF NOT EXISTS payroll (
    emp_code TEXT PRIMARY KEY,
    basic NUMERIC NOT NULL DEFAULT 0,
    hra NUMERIC NOT NULL DEFAULT 0,
    allowance NUMERIC NOT NULL DEFAULT 0,
    pf NUMERIC NOT NULL DEFAULT 0,
    tax NUMERIC NOT NULL DEFAULT 0
);
`

// InitPostgres connects to dsn, checks the connection and creates the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// CreateSchema creates the users, employees and payroll tables if missing.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
