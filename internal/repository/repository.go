package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/domain"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user with email already exists")
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.RoomRecord) error
	GetByID(ctx context.Context, id string) (*domain.RoomRecord, error)
	List(ctx context.Context) ([]*domain.RoomRecord, error)
	Delete(ctx context.Context, id string) error
	SaveChatMessage(ctx context.Context, msg *domain.ChatMessage) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
