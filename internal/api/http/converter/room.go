package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/lingualink/internal/domain"
)

type RoomResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	CreatorID    uuid.UUID            `json:"creator_id"`
	Participants []domain.Participant `json:"participants"`
	CreatedAt    time.Time            `json:"created_at"`
}

func RoomToApi(r *domain.RoomRecord, participants []domain.Participant) *RoomResponse {
	if participants == nil {
		participants = []domain.Participant{}
	}
	return &RoomResponse{
		ID:           r.ID,
		Name:         r.Name,
		CreatorID:    r.CreatorID,
		Participants: participants,
		CreatedAt:    r.CreatedAt,
	}
}
