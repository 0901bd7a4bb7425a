package repository

import (
	"context"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetActiveByID resolves a user whose deleted_at is null.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByEmail matches any row, soft-deleted included; GetActiveByEmail
	// requires deleted_at null.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// GetActiveByID excludes soft-deleted rows; owner-mutation paths use it.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	// List returns all events with their creator preloaded, optionally
	// widening the filter to soft-deleted rows.
	List(ctx context.Context, includeDeleted bool) ([]*domain.Event, error)
	// ListActiveByCreator returns a user's active events, newest date first.
	ListActiveByCreator(ctx context.Context, userID uuid.UUID) ([]*domain.Event, error)
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.EventParticipant) error
	Get(ctx context.Context, userID, eventID uuid.UUID) (*domain.EventParticipant, error)
	Delete(ctx context.Context, userID, eventID uuid.UUID) error
	// ListUsersByEvent returns participant user projections for an event.
	ListUsersByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.User, error)
	ListUsersByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID][]*domain.User, error)
}

type LoginHistoryRepository interface {
	Create(ctx context.Context, record *domain.LoginHistory) error
	// RecentByUser returns up to limit records ordered by login_at descending.
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoginHistory, error)
}

type Repositories struct {
	User         UserRepository
	Event        EventRepository
	Participant  ParticipantRepository
	LoginHistory LoginHistoryRepository
}
