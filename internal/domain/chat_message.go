package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID          uuid.UUID
	RoomID      string
	SenderID    string
	DisplayName string
	Content     string
	CreatedAt   time.Time
}

func NewChatMessage(roomID string, sender Participant, content string) *ChatMessage {
	return &ChatMessage{
		ID:          uuid.New(),
		RoomID:      roomID,
		SenderID:    sender.ID,
		DisplayName: sender.Name,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
}
