package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements the Credential Store on Postgres. Every
// read-modify-write runs inside a transaction holding a FOR UPDATE lock on
// the account row, so concurrent transitions for one email serialize and
// lost updates cannot occur.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository wraps a GORM handle as an AccountRepository.
func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	rec := accountModel{
		Email:            account.Email,
		PasswordHash:     account.PasswordHash,
		Role:             account.Role,
		FullName:         account.FullName,
		PhoneNumber:      account.PhoneNumber,
		FailedAttempts:   account.FailedAttempts,
		LockedUntil:      account.LockedUntil,
		ResetToken:       account.ResetToken,
		ResetTokenExpiry: account.ResetTokenExpiry,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Account{}, domain.ErrConflict
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	var rec accountModel
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

// lockRow loads the account row under a FOR UPDATE lock inside tx.
func lockRow(tx *gorm.DB, email string, rec *accountModel) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ?", email).
		Take(rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *accountRepository) RefreshLockState(ctx context.Context, email string, now time.Time) (domain.Account, error) {
	var rec accountModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, email, &rec); err != nil {
			return err
		}
		if rec.LockedUntil == nil || rec.LockedUntil.After(now) {
			return nil
		}
		// Lock has lapsed: clear it on the way out.
		rec.FailedAttempts = 0
		rec.LockedUntil = nil
		return tx.Model(&accountModel{}).
			Where("account_id = ?", rec.AccountID).
			Updates(map[string]any{
				"failed_attempts": 0,
				"locked_until":    nil,
				"updated_at":      now,
			}).Error
	})
	if err != nil {
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) RecordLoginFailure(ctx context.Context, email string, now time.Time, threshold int, lockDuration time.Duration) (domain.Account, error) {
	var rec accountModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, email, &rec); err != nil {
			return err
		}
		if rec.LockedUntil != nil {
			if rec.LockedUntil.After(now) {
				// Still locked: the attempt never reaches credential
				// verification, nothing to count.
				return nil
			}
			rec.FailedAttempts = 0
			rec.LockedUntil = nil
		}

		rec.FailedAttempts++
		if rec.FailedAttempts >= threshold {
			lockedUntil := now.Add(lockDuration)
			rec.LockedUntil = &lockedUntil
		}
		return tx.Model(&accountModel{}).
			Where("account_id = ?", rec.AccountID).
			Updates(map[string]any{
				"failed_attempts": rec.FailedAttempts,
				"locked_until":    rec.LockedUntil,
				"updated_at":      now,
			}).Error
	})
	if err != nil {
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) ClearLoginFailures(ctx context.Context, email string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec accountModel
		if err := lockRow(tx, email, &rec); err != nil {
			return err
		}
		return tx.Model(&accountModel{}).
			Where("account_id = ?", rec.AccountID).
			Updates(map[string]any{
				"failed_attempts": 0,
				"locked_until":    nil,
				"updated_at":      now,
			}).Error
	})
}

func (r *accountRepository) StoreResetToken(ctx context.Context, email, token string, expiry time.Time, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec accountModel
		if err := lockRow(tx, email, &rec); err != nil {
			return err
		}
		// Overwrites any outstanding token: at most one live reset token per account.
		return tx.Model(&accountModel{}).
			Where("account_id = ?", rec.AccountID).
			Updates(map[string]any{
				"reset_token":        token,
				"reset_token_expiry": expiry,
				"updated_at":         now,
			}).Error
	})
}

func (r *accountRepository) ConsumeResetToken(ctx context.Context, email, token, newPasswordHash string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec accountModel
		if err := lockRow(tx, email, &rec); err != nil {
			return err
		}
		if rec.ResetToken == nil || rec.ResetTokenExpiry == nil {
			return domain.ErrTokenInvalid
		}
		if *rec.ResetToken != token || !rec.ResetTokenExpiry.After(now) {
			return domain.ErrTokenInvalid
		}
		// Replacing the hash and clearing both reset fields in one update is
		// what makes the token single-use.
		return tx.Model(&accountModel{}).
			Where("account_id = ?", rec.AccountID).
			Updates(map[string]any{
				"password_hash":      newPasswordHash,
				"reset_token":        nil,
				"reset_token_expiry": nil,
				"updated_at":         now,
			}).Error
	})
}
