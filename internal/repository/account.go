package repository

import (
	"context"
	"errors"
	"fmt"

	"kodbank/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountRepository is the credential store
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. A username or email that is already taken
// surfaces as domain.ErrConflict straight from the unique index, so two
// concurrent registrations cannot both succeed.
func (r *AccountRepository) Create(ctx context.Context, acct *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(acct).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create account: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// FindByUsername looks up an account by exact username
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var acct domain.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&acct).Error; err != nil {
		return nil, notFound("find account by username", err)
	}
	return &acct, nil
}

// FindByID looks up an account by primary key
func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var acct domain.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&acct).Error; err != nil {
		return nil, notFound("find account by id", err)
	}
	return &acct, nil
}

// Balance reads only the balance column of account id
func (r *AccountRepository) Balance(ctx context.Context, id uint) (decimal.Decimal, error) {
	var acct domain.Account
	err := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Select("balance").
		Where("id = ?", id).
		Take(&acct).Error
	if err != nil {
		return decimal.Zero, notFound("read balance", err)
	}
	return acct.Balance, nil
}

// List returns one page of accounts ordered by id plus the total count
func (r *AccountRepository) List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
