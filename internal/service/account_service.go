package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"janus/internal/auth"
	"janus/internal/config"
	"janus/internal/errors"
	"janus/internal/model"
	"janus/internal/repository"
)

// AccountService handles account seeding and quota bookkeeping.
type AccountService interface {
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	SeedAccounts(ctx context.Context, seeds []config.SeedAccount) (created, skipped int, err error)
	Consume(ctx context.Context, username string) (*model.Account, error)
	Refund(ctx context.Context, username string) (*model.Account, error)
	SetActive(ctx context.Context, username string, active bool) error
}

type accountService struct {
	repo repository.AccountRepository
	// Mutex map for per-account locking
	accountMutexes sync.Map
}

// NewAccountService creates a new account service.
func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{repo: repo}
}

// getMutex returns a mutex for a specific username.
func (s *accountService) getMutex(username string) *sync.Mutex {
	value, _ := s.accountMutexes.LoadOrStore(username, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// GetAccount retrieves an account by username.
func (s *accountService) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

// SeedAccounts inserts every seed account that does not exist yet. Existing
// rows are left untouched so returning users keep their consumed quota. Each
// account is looked up and inserted in one transaction.
func (s *accountService) SeedAccounts(ctx context.Context, seeds []config.SeedAccount) (created, skipped int, err error) {
	for _, seed := range seeds {
		var inserted bool
		err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.AccountRepository) error {
			_, err := repo.FindByUsername(ctx, seed.Username)
			if err == nil {
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			hash, err := auth.HashPassword(seed.Password)
			if err != nil {
				return err
			}
			inserted, err = repo.InsertIfAbsent(ctx, &model.Account{
				Username:      seed.Username,
				PasswordHash:  hash,
				UsesAvailable: seed.Uses,
				Active:        seed.IsActive() && seed.Uses > 0,
			})
			return err
		})
		if err != nil {
			return created, skipped, fmt.Errorf("seed account %s: %w", seed.Username, err)
		}
		if inserted {
			created++
		} else {
			skipped++
		}
	}
	return created, skipped, nil
}

// Consume takes one use from the account. Calls for the same username are
// serialized in-process on top of the store's transaction.
func (s *accountService) Consume(ctx context.Context, username string) (*model.Account, error) {
	mu := s.getMutex(username)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.repo.ConsumeOne(ctx, username)
	if err != nil {
		if err == errors.ErrQuotaExhausted || err == errors.ErrAccountSuspended || err == errors.ErrAccountNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("consume quota: %w", err)
	}
	return account, nil
}

// Refund returns one use to the account.
func (s *accountService) Refund(ctx context.Context, username string) (*model.Account, error) {
	mu := s.getMutex(username)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.repo.Refund(ctx, username)
	if err != nil {
		if err == errors.ErrAccountNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("refund quota: %w", err)
	}
	return account, nil
}

// SetActive suspends or reactivates an account.
func (s *accountService) SetActive(ctx context.Context, username string, active bool) error {
	if err := s.repo.SetActive(ctx, username, active); err != nil {
		if err == errors.ErrQuotaExhausted || err == errors.ErrAccountNotFound {
			return err
		}
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}
