package postgres

import (
	"context"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		First(&event, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Event, error) {
	var events []*domain.Event
	q := r.db.WithContext(ctx).Preload("Creator")
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListActiveByCreator(ctx context.Context, userID uuid.UUID) ([]*domain.Event, error) {
	var events []*domain.Event
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("created_by = ? AND deleted_at IS NULL", userID).
		Order("date DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
