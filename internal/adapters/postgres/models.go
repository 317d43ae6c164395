package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/proxiserve/auth-service/internal/domain"
)

type accountModel struct {
	AccountID        uuid.UUID  `gorm:"column:account_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string     `gorm:"column:email"`
	PasswordHash     string     `gorm:"column:password_hash"`
	Role             string     `gorm:"column:role"`
	FullName         string     `gorm:"column:full_name"`
	PhoneNumber      string     `gorm:"column:phone_number"`
	FailedAttempts   int        `gorm:"column:failed_attempts"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	ResetToken       *string    `gorm:"column:reset_token"`
	ResetTokenExpiry *time.Time `gorm:"column:reset_token_expiry"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

type loginAttemptModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	Email         string    `gorm:"column:email"`
	AttemptAt     time.Time `gorm:"column:attempt_at"`
	IPAddress     *string   `gorm:"column:ip_address"`
	Status        string    `gorm:"column:status"`
	FailureReason string    `gorm:"column:failure_reason"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

func toDomainAccount(m accountModel) domain.Account {
	return domain.Account{
		AccountID:        m.AccountID,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		Role:             m.Role,
		FullName:         m.FullName,
		PhoneNumber:      m.PhoneNumber,
		FailedAttempts:   m.FailedAttempts,
		LockedUntil:      m.LockedUntil,
		ResetToken:       m.ResetToken,
		ResetTokenExpiry: m.ResetTokenExpiry,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
