package postgres

import (
	"context"

	"github.com/proxiserve/auth-service/internal/domain"
	"gorm.io/gorm"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository wraps a GORM handle as a LoginAttemptRepository.
func NewLoginAttemptRepository(db *gorm.DB) *loginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt domain.LoginAttempt) error {
	rec := loginAttemptModel{
		Email:         attempt.Email,
		AttemptAt:     attempt.AttemptAt,
		Status:        attempt.Status,
		FailureReason: attempt.FailureReason,
	}
	if attempt.IPAddress != "" {
		rec.IPAddress = &attempt.IPAddress
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
