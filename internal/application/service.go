package application

import (
	"time"

	"github.com/proxiserve/auth-service/internal/ports"
)

// Service implements the credential and session security use-cases: login
// with brute-force lockout, bearer-token issuance and validation, and the
// two-phase password reset protocol.
type Service struct {
	cfg      Config
	accounts ports.AccountRepository
	attempts ports.LoginAttemptRepository
	throttle ports.ThrottleStore
	notifier ports.Notifier
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	nowFn    func() time.Time
}

type Dependencies struct {
	Config   Config
	Accounts ports.AccountRepository
	Attempts ports.LoginAttemptRepository
	Throttle ports.ThrottleStore
	Notifier ports.Notifier
	Hasher   ports.PasswordHasher
	Codec    ports.TokenCodec
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:      deps.Config,
		accounts: deps.Accounts,
		attempts: deps.Attempts,
		throttle: deps.Throttle,
		notifier: deps.Notifier,
		hasher:   deps.Hasher,
		codec:    deps.Codec,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock. Tests use it to drive lockout expiry.
func (s *Service) WithClock(nowFn func() time.Time) *Service {
	s.nowFn = nowFn
	return s
}
