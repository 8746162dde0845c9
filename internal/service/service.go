package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/domain"
)

type RoomCatalogInteractor interface {
	CreateRoom(ctx context.Context, name string, creator uuid.UUID) (*domain.RoomRecord, error)
	GetRoom(ctx context.Context, id string) (*domain.RoomRecord, error)
	ListRooms(ctx context.Context) ([]*domain.RoomRecord, error)
}

type UserInteractor interface {
	CreateUser(ctx context.Context, name, email, language string) (*domain.User, error)
	CreateGuest(ctx context.Context, name, language string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}
