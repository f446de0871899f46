package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"janus/internal/errors"
	"janus/internal/model"
)

// AccountRepository defines credential store operations.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	// InsertIfAbsent creates the account unless the username exists. It never
	// overwrites a stored row and reports whether a row was created.
	InsertIfAbsent(ctx context.Context, account *model.Account) (bool, error)
	// ConsumeOne atomically takes one use from an active account and
	// deactivates it when the quota reaches zero. It returns the account as
	// persisted after the decrement, ErrQuotaExhausted when no use is left and
	// ErrAccountSuspended when the account was switched off with quota left.
	ConsumeOne(ctx context.Context, username string) (*model.Account, error)
	Refund(ctx context.Context, username string) (*model.Account, error)
	SetActive(ctx context.Context, username string, active bool) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// FindByUsername finds an account by its primary key.
func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// InsertIfAbsent inserts the account with ON CONFLICT DO NOTHING.
func (r *accountRepository) InsertIfAbsent(ctx context.Context, account *model.Account) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(account)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ConsumeOne runs the conditional decrement, read-back and deactivation in
// one transaction; the guarded UPDATE serializes concurrent callers on the row.
func (r *accountRepository) ConsumeOne(ctx context.Context, username string) (*model.Account, error) {
	var account *model.Account
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx := db.WithContext(ctx)
		txRepo := &accountRepository{db: db}

		res := tx.Model(&model.Account{}).
			Where("username = ? AND active = ? AND uses_available > 0", username, true).
			Update("uses_available", gorm.Expr("uses_available - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			current, err := txRepo.FindByUsername(ctx, username)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.ErrAccountNotFound
				}
				return err
			}
			if current.Suspended() {
				return errors.ErrAccountSuspended
			}
			return errors.ErrQuotaExhausted
		}

		updated, err := txRepo.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if updated.Exhausted() && updated.Active {
			if err := tx.Model(&model.Account{}).
				Where("username = ?", username).
				Update("active", false).Error; err != nil {
				return err
			}
			updated.Active = false
		}
		account = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Refund gives one use back. An account is reactivated only when it was
// switched off by running out of uses; a suspended account stays suspended.
func (r *accountRepository) Refund(ctx context.Context, username string) (*model.Account, error) {
	var account *model.Account
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx := db.WithContext(ctx)
		txRepo := &accountRepository{db: db}

		current, err := txRepo.FindByUsername(ctx, username)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrAccountNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"uses_available": gorm.Expr("uses_available + 1"),
		}
		if current.Exhausted() {
			updates["active"] = true
		}
		if err := tx.Model(&model.Account{}).
			Where("username = ?", username).
			Updates(updates).Error; err != nil {
			return err
		}

		updated, err := txRepo.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		account = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SetActive suspends or reactivates an account. Reactivation is refused for
// exhausted accounts so the active flag never contradicts the quota.
func (r *accountRepository) SetActive(ctx context.Context, username string, active bool) error {
	q := r.db.WithContext(ctx).Model(&model.Account{}).Where("username = ?", username)
	if active {
		q = q.Where("uses_available > 0")
	}
	res := q.Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		account, err := r.FindByUsername(ctx, username)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrAccountNotFound
			}
			return err
		}
		if active && account.Exhausted() {
			return errors.ErrQuotaExhausted
		}
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *accountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo AccountRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &accountRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
