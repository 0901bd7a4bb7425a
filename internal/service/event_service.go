package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventService struct {
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	logger          *slog.Logger
}

func NewEventService(eventRepo repository.EventRepository, participantRepo repository.ParticipantRepository, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		logger:          logger,
	}
}

type CreateEventInput struct {
	Title       string
	Description *string
	Date        time.Time
}

// UpdateEventInput carries partial-update semantics: nil fields are left
// untouched.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
}

// EventWithParticipants pairs an event with its participant projections for
// listing variants that include them.
type EventWithParticipants struct {
	Event        *domain.Event
	Participants []*domain.User
}

func (s *EventService) Create(ctx context.Context, creatorID uuid.UUID, input CreateEventInput) (*domain.Event, error) {
	event := &domain.Event{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, callerID, eventID uuid.UUID, input UpdateEventInput) (*domain.Event, error) {
	event, err := s.getOwnedEvent(ctx, callerID, eventID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, callerID, eventID uuid.UUID) error {
	event, err := s.getOwnedEvent(ctx, callerID, eventID)
	if err != nil {
		return err
	}

	now := time.Now()
	event.DeletedAt = &now
	return s.eventRepo.Update(ctx, event)
}

func (s *EventService) getOwnedEvent(ctx context.Context, callerID, eventID uuid.UUID) (*domain.Event, error) {
	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if event.CreatedBy != callerID {
		return nil, domain.ErrNotEventOwner
	}
	return event, nil
}

// ToggleParticipation flips the caller's membership on an event they do not
// own. Returns true when the toggle left the caller participating.
func (s *EventService) ToggleParticipation(ctx context.Context, callerID, eventID uuid.UUID) (bool, error) {
	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrEventNotFound
		}
		return false, err
	}

	if event.CreatedBy == callerID {
		return false, domain.ErrOwnEventParticipation
	}

	_, err = s.participantRepo.Get(ctx, callerID, eventID)
	switch {
	case err == nil:
		if err := s.participantRepo.Delete(ctx, callerID, eventID); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		err := s.participantRepo.Create(ctx, &domain.EventParticipant{
			UserID:  callerID,
			EventID: eventID,
		})
		// A concurrent toggle may have created the row between the lookup
		// and the insert; the composite key rejects the duplicate and the
		// outcome is the same: the caller is participating.
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (s *EventService) Participants(ctx context.Context, eventID uuid.UUID) ([]*domain.User, error) {
	if _, err := s.eventRepo.GetActiveByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return s.participantRepo.ListUsersByEvent(ctx, eventID)
}

func (s *EventService) ListPublic(ctx context.Context, includeDeleted bool) ([]*EventWithParticipants, error) {
	events, err := s.eventRepo.List(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}
	return s.attachParticipants(ctx, events)
}

func (s *EventService) ListByCreator(ctx context.Context, userID uuid.UUID) ([]*EventWithParticipants, error) {
	events, err := s.eventRepo.ListActiveByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachParticipants(ctx, events)
}

func (s *EventService) attachParticipants(ctx context.Context, events []*domain.Event) ([]*EventWithParticipants, error) {
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	byEvent, err := s.participantRepo.ListUsersByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*EventWithParticipants, 0, len(events))
	for _, e := range events {
		result = append(result, &EventWithParticipants{
			Event:        e,
			Participants: byEvent[e.ID],
		})
	}
	return result, nil
}
