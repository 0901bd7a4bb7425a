package postgres

import (
	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Event{},
		&domain.EventParticipant{},
		&domain.LoginHistory{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db),
		Event:        NewEventRepository(db),
		Participant:  NewParticipantRepository(db),
		LoginHistory: NewLoginHistoryRepository(db),
	}
}
