package service

import (
	"context"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/pkg/mailer"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/events"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EventPublisher is the slice of the NATS publisher services need.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IAuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	GetMe(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type AuthService struct {
	uowFactory    unitofwork.RepositoryFactory
	emailService  mailer.IEmailService
	publisher     EventPublisher
	logger        logger.ILogger
	jwtSecret     string
	expireMinutes int
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher EventPublisher,
	log logger.ILogger,
	jwtSecret string,
	expireMinutes int,
) IAuthService {
	return &AuthService{
		uowFactory:    uowFactory,
		emailService:  emailService,
		publisher:     publisher,
		logger:        log,
		jwtSecret:     jwtSecret,
		expireMinutes: expireMinutes,
	}
}

func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	// Fire and forget; signup must not wait on SMTP.
	go func(email string) {
		if err := s.emailService.SendWelcome(email); err != nil {
			s.logger.Warn("auth", "failed to send welcome email", map[string]interface{}{
				"email": email,
				"error": err.Error(),
			})
		}
	}(user.Email)

	if err := s.publisher.Publish(ctx, events.BaseEvent{
		Type:       "USER_SIGNUP",
		Data:       map[string]interface{}{"user_id": user.Id.String(), "email": user.Email},
		OccurredAt: time.Now(),
	}); err != nil {
		s.logger.Warn("auth", "failed to publish signup event", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("auth", "user registered", map[string]interface{}{"user_id": user.Id.String()})

	return &dto.UserResponse{
		Id:        user.Id,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// The token subject carries the email; the middleware resolves it
	// back to a user row per request.
	claims := jwt.MapClaims{
		"sub": user.Email,
		"exp": time.Now().Add(time.Duration(s.expireMinutes) * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.BaseEvent{
		Type:       "USER_LOGIN",
		Data:       map[string]interface{}{"user_id": user.Id.String()},
		OccurredAt: time.Now(),
	}); err != nil {
		s.logger.Warn("auth", "failed to publish login event", map[string]interface{}{"error": err.Error()})
	}

	return &dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
	}, nil
}

func (s *AuthService) GetMe(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	return &dto.UserResponse{
		Id:        user.Id,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}
