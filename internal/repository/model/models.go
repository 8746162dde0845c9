package model

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID        string    `gorm:"size:64;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     *string   `gorm:"size:255;uniqueIndex:idx_users_email,where:email IS NOT NULL"`
	Language  string    `gorm:"size:16"`
	IsGuest   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ChatMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID      string    `gorm:"size:64;index;not null"`
	SenderID    string    `gorm:"size:64;not null"`
	DisplayName string    `gorm:"size:255"`
	Content     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}
