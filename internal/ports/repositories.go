package ports

import (
	"context"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
)

// AccountRepository is the Credential Store contract. Implementations must
// apply every read-modify-write method as one atomic per-row operation:
// concurrent calls for the same email serialize, different emails never
// contend.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)

	// RefreshLockState performs the lazy unlock: when the stored lock has
	// lapsed at now it clears failed_attempts and locked_until before
	// returning the record. Unknown email returns ErrNotFound.
	RefreshLockState(ctx context.Context, email string, now time.Time) (domain.Account, error)

	// RecordLoginFailure applies the failure transition: a lapsed lock is
	// cleared first, a live lock makes the call a no-op, otherwise the
	// counter increments and crossing threshold sets locked_until to
	// now+lockDuration. Returns the post-transition record.
	RecordLoginFailure(ctx context.Context, email string, now time.Time, threshold int, lockDuration time.Duration) (domain.Account, error)

	// ClearLoginFailures unconditionally resets the account to the open
	// state (counter zero, no lock).
	ClearLoginFailures(ctx context.Context, email string, now time.Time) error

	// StoreResetToken persists token verbatim with its expiry, replacing any
	// outstanding reset token so at most one is live per account.
	StoreResetToken(ctx context.Context, email, token string, expiry time.Time, now time.Time) error

	// ConsumeResetToken replaces the password hash and clears both reset
	// fields in one update, provided the stored token equals token verbatim
	// and the stored expiry is after now. Any mismatch returns
	// ErrTokenInvalid and mutates nothing.
	ConsumeResetToken(ctx context.Context, email, token, newPasswordHash string, now time.Time) error
}

// LoginAttemptRepository records authentication outcomes for audit.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
}
