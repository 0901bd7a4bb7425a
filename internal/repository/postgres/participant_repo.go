package postgres

import (
	"context"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *participantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.EventParticipant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participantRepository) Get(ctx context.Context, userID, eventID uuid.UUID) (*domain.EventParticipant, error) {
	var p domain.EventParticipant
	err := r.db.WithContext(ctx).
		First(&p, "user_id = ? AND event_id = ?", userID, eventID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&domain.EventParticipant{}).Error
}

func (r *participantRepository) ListUsersByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN event_participants ON event_participants.user_id = users.id").
		Where("event_participants.event_id = ?", eventID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *participantRepository) ListUsersByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID][]*domain.User, error) {
	result := make(map[uuid.UUID][]*domain.User, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		domain.User
		EventID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.*, event_participants.event_id").
		Joins("JOIN event_participants ON event_participants.user_id = users.id").
		Where("event_participants.event_id IN ?", eventIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		u := rows[i].User
		result[rows[i].EventID] = append(result[rows[i].EventID], &u)
	}
	return result, nil
}
