package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles form a closed set; authorization is by exact role match.
const (
	RoleClient  = "ROLE_CLIENT"
	RoleArtisan = "ROLE_ARTISAN"
	RoleAdmin   = "ROLE_ADMIN"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleArtisan, RoleAdmin:
		return true
	}
	return false
}

// Account is the durable credential record for one identity.
// Lockout counters and the outstanding reset token live directly on the
// record, so every transition is one atomic update of a single row.
type Account struct {
	AccountID    uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	FullName     string
	PhoneNumber  string

	FailedAttempts int
	LockedUntil    *time.Time

	// ResetToken and ResetTokenExpiry are both set or both nil.
	ResetToken       *string
	ResetTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Locked reports whether the account lock is still in force at now.
// Only the stored timestamp decides; no timer ever clears it.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// LoginAttempt records one authentication outcome for audit.
type LoginAttempt struct {
	ID            int64
	Email         string
	AttemptAt     time.Time
	IPAddress     string
	Status        string
	FailureReason string
}

const (
	AttemptSuccess = "SUCCESS"
	AttemptFailed  = "FAILED"
)
