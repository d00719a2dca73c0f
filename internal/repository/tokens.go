package repository

import (
	"context"
	"fmt"
	"time"

	"photoshare/internal/model"

	"gorm.io/gorm"
)

// Tokens 令牌吊销台账（数据库侧，redis 之外的持久层备份）。
type Tokens struct {
	db *gorm.DB
}

func NewTokens(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

// Invalidate 记录一枚被吊销的令牌，随后清理早于 pruneBefore 的旧记录——
// 那些令牌即使没在台账里也早已自然过期。
func (r *Tokens) Invalidate(ctx context.Context, token string, pruneBefore time.Time) error {
	if err := r.db.WithContext(ctx).Create(&model.InvalidToken{Token: token}).Error; err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Where("created_at < ?", pruneBefore).
		Delete(&model.InvalidToken{}).Error; err != nil {
		return fmt.Errorf("prune invalid tokens: %w", err)
	}
	return nil
}

// IsInvalidated 查询令牌是否在吊销台账内。
func (r *Tokens) IsInvalidated(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.InvalidToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check invalid token: %w", err)
	}
	return count > 0, nil
}
