package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avdeev/events-manager/internal/config"
	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/mail"
	"github.com/avdeev/events-manager/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// loginHistoryWindow bounds the new-device scan. Devices last seen beyond the
// window are reported as new again; that is the intended tradeoff, not a bug.
const loginHistoryWindow = 10

// UnknownClient is the sentinel recorded when the request carries no usable
// address or agent string.
const UnknownClient = "unknown"

const mailSendTimeout = 30 * time.Second

type AuthService struct {
	userRepo    repository.UserRepository
	historyRepo repository.LoginHistoryRepository
	mailer      mail.Mailer
	cfg         *config.Config
	logger      *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, historyRepo repository.LoginHistoryRepository, mailer mail.Mailer, cfg *config.Config, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		mailer:      mailer,
		cfg:         cfg,
		logger:      logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type AuthResult struct {
	User              *domain.User
	Token             string
	NewDeviceDetected bool
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	// The uniqueness constraint spans soft-deleted rows, so the pre-check
	// must not filter on deleted_at.
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrEmailExists
		}
		return nil, err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetActiveByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.ComparePassword(input.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	ipAddress := input.IPAddress
	if ipAddress == "" {
		ipAddress = UnknownClient
	}
	userAgent := input.UserAgent
	if userAgent == "" {
		userAgent = UnknownClient
	}

	recent, err := s.historyRepo.RecentByUser(ctx, user.ID, loginHistoryWindow)
	if err != nil {
		return nil, err
	}

	isNewDevice := true
	for _, record := range recent {
		if record.MatchesClient(ipAddress, userAgent) {
			isNewDevice = false
			break
		}
	}

	record := &domain.LoginHistory{
		ID:        uuid.New(),
		UserID:    user.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoginAt:   time.Now(),
	}
	if err := s.historyRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	// A first-ever login never counts as a new device; alerts only make
	// sense against previously seen history.
	newDeviceDetected := isNewDevice && len(recent) > 0
	if newDeviceDetected {
		s.dispatchNewDeviceAlert(user, record)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, NewDeviceDetected: newDeviceDetected}, nil
}

// dispatchNewDeviceAlert sends the alert without blocking the login response.
// Delivery failures are logged and swallowed.
func (s *AuthService) dispatchNewDeviceAlert(user *domain.User, record *domain.LoginHistory) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()

		err := s.mailer.SendNewDeviceAlert(ctx, user.Email, user.Name, record.IPAddress, record.UserAgent, record.LoginAt)
		if err != nil {
			s.logger.Error("failed to send new device alert",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

func (s *AuthService) GenerateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTExpiry()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GetActiveUser resolves a token subject against the credential store. A user
// soft-deleted after token issuance no longer resolves.
func (s *AuthService) GetActiveUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
