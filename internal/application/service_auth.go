package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
	"github.com/proxiserve/auth-service/internal/ports"
)

// Signup creates a credential record for a new identity.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return SignupResponse{}, err
	}
	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		if err := s.enforceThrottle(ctx, "signup:ip:"+ip, s.cfg.ThrottleIPThreshold, s.cfg.ThrottleWindow); err != nil {
			return SignupResponse{}, err
		}
	}

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = s.cfg.DefaultRole
	}
	if !domain.ValidRole(role) {
		return SignupResponse{}, fmt.Errorf("%w: invalid role", domain.ErrInvalidInput)
	}

	if err := domain.ValidatePassword(req.Password); err != nil {
		return SignupResponse{}, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	account, err := s.accounts.Create(ctx, domain.Account{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FullName:     strings.TrimSpace(req.FullName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return SignupResponse{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return SignupResponse{}, err
	}

	appLogger().InfoContext(ctx, "account registered",
		"operation", "signup",
		"outcome", "success",
		"email", email,
		"role", role,
	)
	return SignupResponse{AccountID: account.AccountID, Role: account.Role}, nil
}

// Login verifies credentials behind the lockout guard and issues a session
// token. The outward response for unknown identity and wrong password is
// identical; only the lockout state is a distinct, user-visible outcome.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	blocked, err := s.IsBlocked(ctx, email)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("lockout check: %w", err)
	}
	if blocked {
		s.recordAttempt(ctx, email, req.IPAddress, domain.AttemptFailed, "ACCOUNT_LOCKED")
		appLogger().WarnContext(ctx, "login rejected: account locked",
			"operation", "login",
			"outcome", "blocked",
			"email", email,
		)
		return LoginResponse{}, domain.ErrAccountLocked
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown identity: the guard has nothing to track, and the
			// outward response stays indistinguishable from a wrong secret.
			s.recordAttempt(ctx, email, req.IPAddress, domain.AttemptFailed, "USER_NOT_FOUND")
			return LoginResponse{}, domain.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		s.recordAttempt(ctx, email, req.IPAddress, domain.AttemptFailed, "INVALID_PASSWORD")
		if err := s.loginFailed(ctx, email); err != nil {
			appLogger().ErrorContext(ctx, "failed to apply lockout transition",
				"operation", "login",
				"outcome", "failure",
				"email", email,
				"error", err,
			)
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.loginSucceeded(ctx, email); err != nil {
		return LoginResponse{}, fmt.Errorf("reset lockout state: %w", err)
	}

	token, err := s.codec.Issue(account.Email, account.Role, s.cfg.TokenTTL)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.recordAttempt(ctx, email, req.IPAddress, domain.AttemptSuccess, "")
	appLogger().InfoContext(ctx, "login succeeded",
		"operation", "login",
		"outcome", "success",
		"email", email,
	)
	return LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// ValidateToken verifies a bearer token's signature and freshness. The token
// is self-contained, so no store lookup happens here.
func (s *Service) ValidateToken(ctx context.Context, raw string) (ports.TokenClaims, error) {
	claims, err := s.codec.Verify(raw)
	if err != nil {
		outcome := "invalid"
		if errors.Is(err, domain.ErrTokenExpired) {
			outcome = "expired"
		}
		appLogger().WarnContext(ctx, "token rejected",
			"operation", "validate_token",
			"outcome", outcome,
		)
		return ports.TokenClaims{}, err
	}
	return claims, nil
}

// Account returns the credential record for an identity. Used by the profile
// endpoint after the gate has authenticated the caller.
func (s *Service) Account(ctx context.Context, email string) (domain.Account, error) {
	return s.accounts.FindByEmail(ctx, email)
}

// SessionTTL exposes the configured session validity window.
func (s *Service) SessionTTL() time.Duration {
	return s.cfg.TokenTTL
}
