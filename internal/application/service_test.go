package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/proxiserve/auth-service/internal/adapters/security"
	"github.com/proxiserve/auth-service/internal/domain"
	"github.com/proxiserve/auth-service/internal/ports"
)

// testClock is a mutable clock shared by the service and the token codec so
// tests can drive lockout and token expiry deterministically.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memAccounts is an in-memory AccountRepository honoring the same transition
// contract as the Postgres adapter.
type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: map[string]*domain.Account{}}
}

func (m *memAccounts) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return domain.Account{}, domain.ErrConflict
	}
	account.AccountID = uuid.New()
	stored := account
	m.byEmail[account.Email] = &stored
	return account, nil
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return *account, nil
}

func (m *memAccounts) RefreshLockState(_ context.Context, email string, now time.Time) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	if account.LockedUntil != nil && !account.LockedUntil.After(now) {
		account.FailedAttempts = 0
		account.LockedUntil = nil
	}
	return *account, nil
}

func (m *memAccounts) RecordLoginFailure(_ context.Context, email string, now time.Time, threshold int, lockDuration time.Duration) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	if account.LockedUntil != nil {
		if account.LockedUntil.After(now) {
			return *account, nil
		}
		account.FailedAttempts = 0
		account.LockedUntil = nil
	}
	account.FailedAttempts++
	if account.FailedAttempts >= threshold {
		lockedUntil := now.Add(lockDuration)
		account.LockedUntil = &lockedUntil
	}
	return *account, nil
}

func (m *memAccounts) ClearLoginFailures(_ context.Context, email string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.ErrNotFound
	}
	account.FailedAttempts = 0
	account.LockedUntil = nil
	return nil
}

func (m *memAccounts) StoreResetToken(_ context.Context, email, token string, expiry time.Time, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.ErrNotFound
	}
	account.ResetToken = &token
	account.ResetTokenExpiry = &expiry
	return nil
}

func (m *memAccounts) ConsumeResetToken(_ context.Context, email, token, newPasswordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return domain.ErrNotFound
	}
	if account.ResetToken == nil || account.ResetTokenExpiry == nil ||
		*account.ResetToken != token || !account.ResetTokenExpiry.After(now) {
		return domain.ErrTokenInvalid
	}
	account.PasswordHash = newPasswordHash
	account.ResetToken = nil
	account.ResetTokenExpiry = nil
	return nil
}

type memAttempts struct {
	mu      sync.Mutex
	records []domain.LoginAttempt
}

func (m *memAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, attempt)
	return nil
}

func (m *memAttempts) last(t *testing.T) domain.LoginAttempt {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		t.Fatal("no login attempts recorded")
	}
	return m.records[len(m.records)-1]
}

type memThrottle struct {
	mu      sync.Mutex
	hits    map[string]int
	blocked map[string]time.Time
}

func newMemThrottle() *memThrottle {
	return &memThrottle{hits: map[string]int{}, blocked: map[string]time.Time{}}
}

func (m *memThrottle) Get(_ context.Context, key string) (ports.ThrottleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := ports.ThrottleState{Count: m.hits[key]}
	if until, ok := m.blocked[key]; ok {
		state.BlockedUntil = &until
	}
	return state, nil
}

func (m *memThrottle) RecordHit(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.ThrottleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	state := ports.ThrottleState{Count: m.hits[key]}
	if m.hits[key] >= threshold {
		until := now.Add(window)
		m.blocked[key] = until
		state.BlockedUntil = &until
	}
	return state, nil
}

func (m *memThrottle) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hits, key)
	delete(m.blocked, key)
	return nil
}

type sentMail struct {
	Address string
	Subject string
	Body    string
}

type memNotifier struct {
	sent chan sentMail
}

func newMemNotifier() *memNotifier {
	return &memNotifier{sent: make(chan sentMail, 8)}
}

func (m *memNotifier) Send(_ context.Context, address, subject, body string) error {
	m.sent <- sentMail{Address: address, Subject: subject, Body: body}
	return nil
}

func (m *memNotifier) waitForMail(t *testing.T) sentMail {
	t.Helper()
	select {
	case mail := <-m.sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return sentMail{}
	}
}

// plainHasher keeps password material inspectable in tests; the bcrypt
// adapter has its own coverage.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fixture struct {
	clock    *testClock
	accounts *memAccounts
	attempts *memAttempts
	throttle *memThrottle
	notifier *memNotifier
	codec    *security.HMACTokenCodec
	svc      *Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	clock := newTestClock()
	codec, err := security.NewHMACTokenCodec([]byte("test-signing-secret-0123456789abcdef"))
	if err != nil {
		t.Fatalf("build codec: %v", err)
	}
	codec.WithClock(clock.Now)

	f := &fixture{
		clock:    clock,
		accounts: newMemAccounts(),
		attempts: &memAttempts{},
		throttle: newMemThrottle(),
		notifier: newMemNotifier(),
		codec:    codec,
	}
	f.svc = NewService(Dependencies{
		Config:   cfg,
		Accounts: f.accounts,
		Attempts: f.attempts,
		Throttle: f.throttle,
		Notifier: f.notifier,
		Hasher:   plainHasher{},
		Codec:    codec,
	}).WithClock(clock.Now)
	return f
}

func defaultConfig() Config {
	return Config{
		DefaultRole:          domain.RoleClient,
		TokenTTL:             24 * time.Hour,
		ResetTokenTTL:        15 * time.Minute,
		FailedLoginThreshold: 5,
		LockDuration:         15 * time.Minute,
		ResetLinkBaseURL:     "https://app.proxiserve.test/reset-password",
		ThrottleWindow:       time.Hour,
	}
}

func (f *fixture) seedAccount(t *testing.T, email, password, role string) {
	t.Helper()
	now := f.clock.Now()
	_, err := f.accounts.Create(context.Background(), domain.Account{
		Email:        email,
		PasswordHash: "hashed:" + password,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", email, err)
	}
}

func (f *fixture) storedAccount(t *testing.T, email string) domain.Account {
	t.Helper()
	account, err := f.accounts.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("load account %s: %v", email, err)
	}
	return account
}
