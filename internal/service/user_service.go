package service

import (
	"context"
	"errors"
	"time"

	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SoftDelete marks the target account deleted. Callers may only delete their
// own account.
func (s *UserService) SoftDelete(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID != targetID {
		return domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	now := time.Now()
	user.DeletedAt = &now
	user.UpdatedAt = now
	return s.userRepo.Update(ctx, user)
}
