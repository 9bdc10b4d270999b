package repository

import (
	"context"
	"fmt"

	"kodbank/internal/domain"

	"gorm.io/gorm"
)

// SessionTokenRepository is the append-only log of issued session tokens.
// Nothing on the request path reads it back; the middleware trusts the
// token's own signature and expiry.
type SessionTokenRepository struct {
	db *gorm.DB
}

func NewSessionTokenRepository(db *gorm.DB) *SessionTokenRepository {
	return &SessionTokenRepository{db: db}
}

// Create records an issued token
func (r *SessionTokenRepository) Create(ctx context.Context, t *domain.SessionToken) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("record session token: %w", err)
	}
	return nil
}

// SessionFilter narrows List; a zero AccountID means every account
type SessionFilter struct {
	AccountID uint
	Offset    int
	Limit     int
}

// List returns issued tokens newest first plus the total matching count
func (r *SessionTokenRepository) List(ctx context.Context, f SessionFilter) ([]domain.SessionToken, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.SessionToken{})
	if f.AccountID != 0 {
		query = query.Where("account_id = ?", f.AccountID)
	}
	query = query.Session(&gorm.Session{}) // Shared by Count and Find
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count session tokens: %w", err)
	}
	var tokens []domain.SessionToken
	if err := query.Order("created_at desc, id desc").Offset(f.Offset).Limit(f.Limit).Find(&tokens).Error; err != nil {
		return nil, 0, fmt.Errorf("list session tokens: %w", err)
	}
	return tokens, total, nil
}
