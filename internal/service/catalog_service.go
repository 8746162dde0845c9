package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/internal/repository"
)

// RoomCatalogService is the directory-facing room CRUD. Live signaling
// membership is independent of it: a participant can join any room id,
// catalogued or not.
type RoomCatalogService struct {
	rooms repository.RoomRepository
	log   *slog.Logger
}

func NewRoomCatalogService(rooms repository.RoomRepository, log *slog.Logger) *RoomCatalogService {
	if log == nil {
		log = slog.Default()
	}
	return &RoomCatalogService{rooms: rooms, log: log}
}

func (s *RoomCatalogService) CreateRoom(ctx context.Context, name string, creator uuid.UUID) (*domain.RoomRecord, error) {
	const op = "service.catalog.create"

	if name == "" {
		return nil, errors.New("room name is required")
	}

	room := domain.NewRoomRecord(name, creator)
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info("room created", slog.String("op", op), slog.String("room_id", room.ID))
	return room, nil
}

func (s *RoomCatalogService) GetRoom(ctx context.Context, id string) (*domain.RoomRecord, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *RoomCatalogService) ListRooms(ctx context.Context) ([]*domain.RoomRecord, error) {
	return s.rooms.List(ctx)
}
