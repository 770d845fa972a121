// Package service holds the business logic of the payroll application:
// the account guard, employee management and payroll calculation. It
// delegates persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GophPayroll/internal/events"
	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/repository"
	"github.com/atinyakov/GophPayroll/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultLockoutThreshold is the number of consecutive failures that locks an account.
	DefaultLockoutThreshold = 5
	// DefaultLockoutWindow is how long a locked account rejects logins.
	DefaultLockoutWindow = 10 * time.Minute
)

// UserRepository defines the credential store operations
// required by the authentication service.
type UserRepository interface {
	// FindByEmail returns the credential record or repository.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new record or returns repository.ErrAlreadyExists.
	Create(ctx context.Context, u *models.User) error
	// Save persists counters, lock state and role of an existing record.
	Save(ctx context.Context, u *models.User) error
	// DeleteByEmail removes a record. Missing records are not an error.
	DeleteByEmail(ctx context.Context, email string) error
	// Count returns the number of stored credentials.
	Count(ctx context.Context) (int64, error)
}

// SessionStore issues and resolves opaque session tokens.
type SessionStore interface {
	Create(ctx context.Context, id models.Identity) (string, error)
	Get(ctx context.Context, token string) (models.Identity, error)
	Delete(ctx context.Context, token string) error
}

// EventPublisher delivers domain events. Failures are logged, never returned
// to the caller of the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// AuthResult is returned by a successful Authenticate call.
type AuthResult struct {
	Identity models.Identity
	Token    string
}

// AuthService guards logins with a consecutive-failure lockout and manages
// credentials and sessions.
type AuthService struct {
	users     UserRepository
	sessions  SessionStore
	publisher EventPublisher
	log       *zap.Logger

	threshold int
	window    time.Duration
	hashCost  int
	now       func() time.Time

	locks *keyLock
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithLockoutPolicy sets how many failures lock an account and for how long.
// Non-positive values keep the defaults.
func WithLockoutPolicy(threshold int, window time.Duration) AuthOption {
	return func(s *AuthService) {
		if threshold > 0 {
			s.threshold = threshold
		}
		if window > 0 {
			s.window = window
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithAuthPublisher sets the destination of account.locked events.
func WithAuthPublisher(p EventPublisher) AuthOption {
	return func(s *AuthService) { s.publisher = p }
}

// WithAuthLogger sets the logger.
func WithAuthLogger(l *zap.Logger) AuthOption {
	return func(s *AuthService) { s.log = l }
}

// NewAuthService constructs an AuthService over the given credential and session stores.
func NewAuthService(users UserRepository, sessions SessionStore, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:     users,
		sessions:  sessions,
		log:       zap.NewNop(),
		threshold: DefaultLockoutThreshold,
		window:    DefaultLockoutWindow,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
		locks:     newKeyLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate checks a login attempt.
//
// An unknown email or a wrong password yields ErrInvalidCredentials. A record
// whose lock is still active yields ErrAccountLocked without being touched.
// Every other attempt updates the record: failures increment the counter and
// lock the account once the threshold is reached, success clears both.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	unlock := s.locks.Lock(email)
	defer unlock()

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load credentials: %w", err)
	}

	now := s.now()
	if u.LockUntil != nil && now.Before(*u.LockUntil) {
		return AuthResult{}, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return AuthResult{}, s.recordFailure(ctx, u, now)
	}

	u.FailedAttempts = 0
	u.LockUntil = nil
	if err := s.users.Save(ctx, u); err != nil {
		return AuthResult{}, fmt.Errorf("save credentials: %w", err)
	}

	id := models.Identity{Email: u.Email, Role: u.Role}
	token, err := s.sessions.Create(ctx, id)
	if err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}
	return AuthResult{Identity: id, Token: token}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, u *models.User, now time.Time) error {
	u.FailedAttempts++
	locked := u.FailedAttempts >= s.threshold
	if locked {
		until := now.Add(s.window)
		u.LockUntil = &until
		u.FailedAttempts = 0
	}

	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	if locked {
		s.log.Warn("account locked",
			zap.String("email", u.Email),
			zap.Time("lock_until", *u.LockUntil),
		)
		publishEvent(ctx, s.publisher, s.log, events.AccountLocked, map[string]any{
			"email":     u.Email,
			"lockUntil": *u.LockUntil,
		})
	}
	return ErrInvalidCredentials
}

// Register creates an employee credential for self sign-up.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	return s.CreateCredential(ctx, email, password, models.RoleEmployee)
}

// CreateCredential hashes password and stores a new credential with role.
func (s *AuthService) CreateCredential(ctx context.Context, email, password string, role models.Role) error {
	email = normalizeEmail(email)

	var check fieldCheck
	check.require(email != "", "email")
	check.require(password != "", "password")
	check.require(role.Valid(), "role")
	if err := check.err(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.users.Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	return err
}

// DeleteCredential removes the employee credential bound to email.
// Admin credentials are left in place.
func (s *AuthService) DeleteCredential(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	unlock := s.locks.Lock(email)
	defer unlock()

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if u.Role != models.RoleEmployee {
		return nil
	}
	return s.users.DeleteByEmail(ctx, email)
}

// EnsureAdmin seeds an admin credential when none exists for email.
// It reports whether a credential was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if normalizeEmail(email) == "" {
		return false, nil
	}

	err := s.CreateCredential(ctx, email, password, models.RoleAdmin)
	if errors.Is(err, ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.Info("admin account created", zap.String("email", normalizeEmail(email)))
	return true, nil
}

// Identity resolves a session token. Unknown or expired tokens yield ErrUnauthenticated.
func (s *AuthService) Identity(ctx context.Context, token string) (models.Identity, error) {
	id, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return models.Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("load session: %w", err)
	}
	return id, nil
}

// Logout destroys the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// CountUsers returns the number of registered credentials.
func (s *AuthService) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func publishEvent(ctx context.Context, p EventPublisher, log *zap.Logger, key string, body any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, body); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
