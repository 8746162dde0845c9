package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Participant is a logical user identity, stable across reconnects.
// A reconnecting client keeps its ID and arrives on a fresh Client.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is one live transport session. It is backed by exactly one
// Participant; the participant may outlive the client and come back on
// a new connection.
type Client struct {
	ID          string
	Participant Participant
	JoinedAt    time.Time
	LastSeen    time.Time
	Mutex       sync.RWMutex
	Socket      *websocket.Conn
	Events      chan Event

	roomID string
	closed bool
}

func NewClient(socket *websocket.Conn) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:       uuid.New().String(),
		JoinedAt: now,
		LastSeen: now,
		Socket:   socket,
		Events:   make(chan Event, 16),
	}
}

func (c *Client) Touch() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	c.LastSeen = time.Now().UTC()
}

// EnqueueEvent hands an event to the client's writer without blocking.
// A full queue drops the event; the caller logs if it cares. Enqueueing
// after Close is a no-op, never a panic.
func (c *Client) EnqueueEvent(event Event) bool {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}

// Close stops the event queue. The writer drains what is left and
// exits.
func (c *Client) Close() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Events)
}

func (c *Client) Room() string {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	return c.roomID
}

func (c *Client) SetRoom(roomID string) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	c.roomID = roomID
}

func (c *Client) SetParticipant(p Participant) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()
	c.Participant = p
}

func (c *Client) ParticipantInfo() Participant {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()
	return c.Participant
}
