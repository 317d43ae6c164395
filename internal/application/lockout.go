package application

import (
	"context"
	"errors"

	"github.com/proxiserve/auth-service/internal/domain"
)

// The lockout guard is a time-based state machine over the account record:
// OPEN while failed_attempts is below threshold, LOCKED once locked_until is
// set and in the future. Unlock is lazy: any access that finds a lapsed lock
// clears it in the same atomic repository operation. No background timer.

// IsBlocked reports whether login attempts for the identity are currently
// rejected, performing the lazy unlock as a side effect. Unknown identities
// are never blocked; the "user not found" decision stays with the caller so
// error paths do not leak account existence.
func (s *Service) IsBlocked(ctx context.Context, email string) (bool, error) {
	now := s.nowFn()
	account, err := s.accounts.RefreshLockState(ctx, email, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.Locked(now), nil
}

// loginFailed applies the failure transition: no-op for unknown or
// still-locked accounts, otherwise the counter increments and crossing the
// threshold starts the lock window.
func (s *Service) loginFailed(ctx context.Context, email string) error {
	now := s.nowFn()
	account, err := s.accounts.RecordLoginFailure(ctx, email, now, s.cfg.FailedLoginThreshold, s.cfg.LockDuration)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if account.Locked(now) {
		appLogger().WarnContext(ctx, "account lockout triggered",
			"operation", "login_failed",
			"outcome", "blocked",
			"email", email,
			"locked_until", account.LockedUntil,
		)
	}
	return nil
}

// loginSucceeded resets the account to the open state; no-op when unknown.
func (s *Service) loginSucceeded(ctx context.Context, email string) error {
	err := s.accounts.ClearLoginFailures(ctx, email, s.nowFn())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// AdminUnlock clears lockout counters on behalf of an administrator.
func (s *Service) AdminUnlock(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.accounts.ClearLoginFailures(ctx, normalized, s.nowFn()); err != nil {
		return err
	}
	appLogger().InfoContext(ctx, "account unlocked by administrator",
		"operation", "admin_unlock",
		"outcome", "success",
		"email", normalized,
	)
	return nil
}
