package service

import (
	"log/slog"

	"github.com/avdeev/events-manager/internal/config"
	"github.com/avdeev/events-manager/internal/mail"
	"github.com/avdeev/events-manager/internal/repository"
)

type Services struct {
	Auth  *AuthService
	Event *EventService
	User  *UserService
}

func NewServices(repos *repository.Repositories, mailer mail.Mailer, cfg *config.Config, logger *slog.Logger) *Services {
	return &Services{
		Auth:  NewAuthService(repos.User, repos.LoginHistory, mailer, cfg, logger),
		Event: NewEventService(repos.Event, repos.Participant, logger),
		User:  NewUserService(repos.User),
	}
}
