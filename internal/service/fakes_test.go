package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/atinyakov/GophPayroll/internal/repository"
	"github.com/atinyakov/GophPayroll/internal/session"
)

// memUsers is an in-memory UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
	saves int
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]models.User)}
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return repository.ErrAlreadyExists
	}
	m.users[u.Email] = *u
	return nil
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; !ok {
		return repository.ErrNotFound
	}
	m.users[u.Email] = *u
	m.saves++
	return nil
}

func (m *memUsers) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, email)
	return nil
}

func (m *memUsers) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memUsers) get(email string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email]
}

// memSessions is an in-memory SessionStore.
type memSessions struct {
	mu       sync.Mutex
	next     int
	sessions map[string]models.Identity
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]models.Identity)}
}

func (m *memSessions) Create(_ context.Context, id models.Identity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	token := fmt.Sprintf("token-%d", m.next)
	m.sessions[token] = id
	return token, nil
}

func (m *memSessions) Get(_ context.Context, token string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessions[token]
	if !ok {
		return models.Identity{}, session.ErrNotFound
	}
	return id, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type publishedEvent struct {
	key  string
	body any
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{key: key, body: body})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.key)
	}
	return keys
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockEmployeeRepo struct {
	CreateFunc       func(ctx context.Context, e models.Employee) error
	FindByCodeFunc   func(ctx context.Context, code string) (*models.Employee, error)
	FindAllFunc      func(ctx context.Context) ([]models.Employee, error)
	UpdateFunc       func(ctx context.Context, e models.Employee) error
	DeleteByCodeFunc func(ctx context.Context, code string) error
}

func (m *mockEmployeeRepo) Create(ctx context.Context, e models.Employee) error {
	return m.CreateFunc(ctx, e)
}
func (m *mockEmployeeRepo) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	return m.FindByCodeFunc(ctx, code)
}
func (m *mockEmployeeRepo) FindAll(ctx context.Context) ([]models.Employee, error) {
	return m.FindAllFunc(ctx)
}
func (m *mockEmployeeRepo) Update(ctx context.Context, e models.Employee) error {
	return m.UpdateFunc(ctx, e)
}
func (m *mockEmployeeRepo) DeleteByCode(ctx context.Context, code string) error {
	return m.DeleteByCodeFunc(ctx, code)
}

type mockPayrollRepo struct {
	FindByEmployeeCodeFunc   func(ctx context.Context, code string) (*models.Payroll, error)
	FindAllFunc              func(ctx context.Context) ([]models.Payroll, error)
	UpsertByEmployeeCodeFunc func(ctx context.Context, code string, p models.Payroll) error
	DeleteByEmployeeCodeFunc func(ctx context.Context, code string) error
}

func (m *mockPayrollRepo) FindByEmployeeCode(ctx context.Context, code string) (*models.Payroll, error) {
	return m.FindByEmployeeCodeFunc(ctx, code)
}
func (m *mockPayrollRepo) FindAll(ctx context.Context) ([]models.Payroll, error) {
	return m.FindAllFunc(ctx)
}
func (m *mockPayrollRepo) UpsertByEmployeeCode(ctx context.Context, code string, p models.Payroll) error {
	return m.UpsertByEmployeeCodeFunc(ctx, code, p)
}
func (m *mockPayrollRepo) DeleteByEmployeeCode(ctx context.Context, code string) error {
	return m.DeleteByEmployeeCodeFunc(ctx, code)
}

type mockCredentials struct {
	CreateCredentialFunc func(ctx context.Context, email, password string, role models.Role) error
	DeleteCredentialFunc func(ctx context.Context, email string) error
}

func (m *mockCredentials) CreateCredential(ctx context.Context, email, password string, role models.Role) error {
	return m.CreateCredentialFunc(ctx, email, password, role)
}
func (m *mockCredentials) DeleteCredential(ctx context.Context, email string) error {
	return m.DeleteCredentialFunc(ctx, email)
}
