package store

import (
	"sync"

	"github.com/immxrtalbeast/lingualink/internal/domain"
)

// Registry maps transport connections to the clients behind them. It
// also keeps the participant-id reverse index the relay needs, so
// resolving a signaling target is a map hit and not a scan.
//
// The registry is shared across rooms and must stay safe under
// concurrent use: disconnect sweeps run concurrently with joins in
// unrelated rooms.
type Registry struct {
	mu            sync.RWMutex
	clients       map[string]*domain.Client
	pidByConn     map[string]string
	byParticipant map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		clients:       make(map[string]*domain.Client),
		pidByConn:     make(map[string]string),
		byParticipant: make(map[string]string),
	}
}

// Register upserts the mapping for the client's connection. A stale
// mapping for the same connection is overwritten; a participant id
// already bound to an older connection is rebound to this one, which
// is what a reconnect looks like.
func (r *Registry) Register(client *domain.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldPid, ok := r.pidByConn[client.ID]; ok && r.byParticipant[oldPid] == client.ID {
		delete(r.byParticipant, oldPid)
	}

	pid := client.ParticipantInfo().ID
	r.clients[client.ID] = client
	r.pidByConn[client.ID] = pid
	r.byParticipant[pid] = client.ID
}

func (r *Registry) Lookup(connID string) (*domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[connID]
	return client, ok
}

// Resolve finds the live connection for a participant id.
func (r *Registry) Resolve(participantID string) (*domain.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byParticipant[participantID]
	if !ok {
		return nil, false
	}
	client, ok := r.clients[connID]
	return client, ok
}

// Unregister removes and returns the prior mapping. The second call
// for the same connection finds nothing, which is what makes the
// disconnect sweep idempotent.
func (r *Registry) Unregister(connID string) (*domain.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[connID]
	if !ok {
		return nil, false
	}

	delete(r.clients, connID)

	// A reconnect may already have rebound the participant id to a
	// newer connection; only drop the index entry if it is still ours.
	pid := r.pidByConn[connID]
	delete(r.pidByConn, connID)
	if r.byParticipant[pid] == connID {
		delete(r.byParticipant, pid)
	}

	return client, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
