package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/internal/repository"
)

// UserService is the directory profile glue: registered users with an
// email and a language preference, and anonymous guests who only need
// a display name to show up in a call.
type UserService struct {
	users repository.UserRepository
	log   *slog.Logger
}

func NewUserService(users repository.UserRepository, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, name, email, language string) (*domain.User, error) {
	const op = "service.user.create"

	if name == "" {
		return nil, errors.New("name is required")
	}

	user := domain.NewUser(name, email, language)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
	)
	return user, nil
}

// CreateGuest onboards an anonymous caller. Guests carry no email and
// are never rejected for a missing name; they get a placeholder one.
func (s *UserService) CreateGuest(ctx context.Context, name, language string) (*domain.User, error) {
	const op = "service.user.guest"

	if name == "" {
		name = "Guest"
	}

	guest := domain.NewGuestUser(name, language)
	if err := s.users.Create(ctx, guest); err != nil {
		return nil, err
	}

	s.log.Info("guest created",
		slog.String("op", op),
		slog.String("user_id", guest.ID.String()),
	)
	return guest, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("user is required")
	}
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}
