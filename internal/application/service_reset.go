package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
)

// RequestPasswordReset issues a short-lived single-use reset token when the
// identity exists. Callers always receive the same generic acknowledgment,
// so this method returns nil for unknown identities.
func (s *Service) RequestPasswordReset(ctx context.Context, email, ipAddress string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if ip := strings.TrimSpace(ipAddress); ip != "" {
		if err := s.enforceThrottle(ctx, "reset:ip:"+ip, s.cfg.ThrottleIPThreshold, s.cfg.ThrottleWindow); err != nil {
			return err
		}
	}
	if err := s.enforceThrottle(ctx, "reset:identity:"+normalized, s.cfg.ThrottleIdentityThreshold, s.cfg.ThrottleWindow); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Do not leak whether the identity exists.
			appLogger().InfoContext(ctx, "reset requested for unknown identity",
				"operation", "request_reset",
				"outcome", "noop",
			)
			return nil
		}
		return err
	}

	token, err := s.codec.Issue(account.Email, account.Role, s.cfg.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	now := s.nowFn()
	expiry := now.Add(s.cfg.ResetTokenTTL)
	// Stored verbatim with its expiry; overwrites any outstanding token so at
	// most one reset token is live per account.
	if err := s.accounts.StoreResetToken(ctx, account.Email, token, expiry, now); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.dispatchResetNotification(account.Email, token)

	appLogger().InfoContext(ctx, "reset token issued",
		"operation", "request_reset",
		"outcome", "success",
		"email", account.Email,
		"expires_at", expiry,
	)
	return nil
}

// dispatchResetNotification hands the reset link to the notification
// collaborator without blocking or failing the request that triggered it.
func (s *Service) dispatchResetNotification(address, token string) {
	if s.notifier == nil {
		return
	}
	link := s.cfg.ResetLinkBaseURL + "?token=" + token
	body := fmt.Sprintf(
		"Hello,\n\nFollow this link to reset your password:\n%s\n\nThe link is valid for %d minutes.",
		link, int(s.cfg.ResetTokenTTL.Minutes()),
	)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, address, "Password reset request", body); err != nil {
			appLogger().WarnContext(ctx, "reset notification failed",
				"operation", "request_reset",
				"outcome", "warning",
				"error", err,
			)
		}
	}()
}

// ResetPassword consumes a reset token and replaces the account's password
// hash. Three independent checks must all hold: the token is
// cryptographically valid and unexpired, its identity maps to an account,
// and the stored token matches verbatim with a stored expiry still in the
// future. Any failure leaves the account untouched.
func (s *Service) ResetPassword(ctx context.Context, req ResetRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		outcome := "invalid"
		if errors.Is(err, domain.ErrTokenExpired) {
			outcome = "expired"
		}
		appLogger().WarnContext(ctx, "reset token rejected by codec",
			"operation", "reset_password",
			"outcome", outcome,
		)
		return domain.ErrUnauthenticated
	}

	account, err := s.accounts.FindByEmail(ctx, claims.Identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}

	now := s.nowFn()
	// The stored side is checked independently of the codec: a token can
	// still be cryptographically valid after a prior use already cleared it.
	if account.ResetToken == nil || account.ResetTokenExpiry == nil ||
		*account.ResetToken != token || !account.ResetTokenExpiry.After(now) {
		appLogger().WarnContext(ctx, "reset token rejected by stored state",
			"operation", "reset_password",
			"outcome", "replay_or_stale",
			"email", account.Email,
		)
		return domain.ErrUnauthenticated
	}

	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// One conditional update replaces the hash and clears both reset fields;
	// a concurrent consume of the same token loses the row lock race and
	// fails the stored-state check inside.
	if err := s.accounts.ConsumeResetToken(ctx, account.Email, token, passwordHash, now); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}

	appLogger().InfoContext(ctx, "password reset completed",
		"operation", "reset_password",
		"outcome", "success",
		"email", account.Email,
	)
	return nil
}
