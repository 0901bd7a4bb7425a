package postgres

import (
	"context"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type loginHistoryRepository struct {
	db *gorm.DB
}

func NewLoginHistoryRepository(db *gorm.DB) *loginHistoryRepository {
	return &loginHistoryRepository{db: db}
}

func (r *loginHistoryRepository) Create(ctx context.Context, record *domain.LoginHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *loginHistoryRepository) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoginHistory, error) {
	var records []*domain.LoginHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("login_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
