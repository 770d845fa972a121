package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophPayroll/internal/models"
)

// PostgresUserRepository stores credential records in the users table.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// FindByEmail loads the credential record for email.
// It returns ErrNotFound when no such user exists.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u         models.User
		role      string
		lockUntil sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT email, password_hash, role, failed_attempts, lock_until FROM users WHERE email = $1
	`, email).Scan(&u.Email, &u.PasswordHash, &role, &u.FailedAttempts, &lockUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByEmail: %w", err)
	}

	u.Role = models.Role(role)
	if lockUntil.Valid {
		t := lockUntil.Time
		u.LockUntil = &t
	}
	return &u, nil
}

// Create inserts a new credential record.
// It returns ErrAlreadyExists when the email is taken.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, role, failed_attempts, lock_until)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, u.Email, u.PasswordHash, string(u.Role), u.FailedAttempts, u.LockUntil)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Save overwrites the mutable fields of an existing credential record.
func (r *PostgresUserRepository) Save(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, role = $3, failed_attempts = $4, lock_until = $5
		WHERE email = $1
	`, u.Email, u.PasswordHash, string(u.Role), u.FailedAttempts, u.LockUntil)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByEmail removes the credential record for email. Missing rows are ignored.
func (r *PostgresUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Count returns the number of registered users.
func (r *PostgresUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
