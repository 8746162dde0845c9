package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory profile persisted across sessions. The signaling
// core does not need it; only the REST glue does.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Language  string    `json:"language,omitempty"`
	IsGuest   bool      `json:"is_guest"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGuestUser(name string, language string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Language:  language,
		IsGuest:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewUser(name string, email string, language string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
