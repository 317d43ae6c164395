package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
)

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", "proxiserve-auth-service",
		"module", "application",
		"layer", "application",
	)
}

// normalizeEmail canonicalizes and validates email format before persistence/comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// recordAttempt stores one login outcome for audit; persistence failure is
// logged and never alters the authentication result.
func (s *Service) recordAttempt(ctx context.Context, email, ip, status, reason string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Insert(ctx, domain.LoginAttempt{
		Email:         email,
		AttemptAt:     s.nowFn(),
		IPAddress:     ip,
		Status:        status,
		FailureReason: reason,
	}); err != nil {
		appLogger().WarnContext(ctx, "failed to persist login attempt",
			"operation", "record_login_attempt",
			"outcome", "failure",
			"reason", reason,
			"error", err,
		)
	}
}

// enforceThrottle applies the windowed counter for one throttle key. Store
// unavailability is logged and waved through: throttling is an abuse guard,
// not a correctness dependency.
func (s *Service) enforceThrottle(ctx context.Context, key string, threshold int, window time.Duration) error {
	if s.throttle == nil || threshold <= 0 || window <= 0 {
		return nil
	}
	if strings.TrimSpace(key) == "" {
		return nil
	}

	now := s.nowFn()
	state, err := s.throttle.Get(ctx, key)
	if err == nil && state.BlockedUntil != nil && state.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}

	updated, err := s.throttle.RecordHit(ctx, key, now, threshold, window)
	if err != nil {
		appLogger().WarnContext(ctx, "throttle state unavailable",
			"operation", "throttle",
			"outcome", "warning",
			"key", key,
			"error", err,
		)
		return nil
	}
	if updated.BlockedUntil != nil && updated.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}
	return nil
}
