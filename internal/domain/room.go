package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomRecord is the directory entry for a room: a name and a creator,
// nothing more. Live membership lives in the room table and is never
// persisted; a server restart starts every room empty.
type RoomRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID uuid.UUID `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoomRecord(name string, creator uuid.UUID) *RoomRecord {
	return &RoomRecord{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creator,
		CreatedAt: time.Now().UTC(),
	}
}
