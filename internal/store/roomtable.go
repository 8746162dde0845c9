package store

import "sync"

// RoomTable maps room ids to their current member sets. Rooms are
// created implicitly on first join and deleted the moment the last
// member leaves; a rejoin right after observes a fresh room, never a
// stale one.
//
// Join and Remove run their callback while holding the room's own
// lock, so the membership snapshot and the mutation it belongs to are
// one atomic step. Unrelated rooms never contend beyond the brief map
// lookup.
type RoomTable struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu      sync.Mutex
	dead    bool
	members map[string]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[string]*room)}
}

// Join inserts participantID into roomID, creating the room if absent.
// emit runs under the room lock with the membership as it was before
// the insert and whether the participant was already a member; no
// other event touching the room can interleave with it. Duplicate
// joins leave the set unchanged.
func (t *RoomTable) Join(roomID, participantID string, emit func(existing []string, already bool)) {
	for {
		t.mu.Lock()
		rm, ok := t.rooms[roomID]
		if !ok {
			rm = &room{members: make(map[string]struct{})}
			t.rooms[roomID] = rm
		}
		t.mu.Unlock()

		rm.mu.Lock()
		if rm.dead {
			// Lost a race with the last member's departure; the entry
			// is gone from the map, take a fresh one.
			rm.mu.Unlock()
			continue
		}

		_, already := rm.members[participantID]
		existing := membersExcept(rm.members, participantID)
		if !already {
			rm.members[participantID] = struct{}{}
		}
		if emit != nil {
			emit(existing, already)
		}
		rm.mu.Unlock()
		return
	}
}

// Remove deletes participantID from roomID. emit runs under the room
// lock with the remaining membership and whether the participant was
// actually a member. An empty room is deleted before emit returns;
// there is no grace period.
func (t *RoomTable) Remove(roomID, participantID string, emit func(remaining []string, removed bool)) {
	t.mu.Lock()
	rm, ok := t.rooms[roomID]
	if !ok {
		t.mu.Unlock()
		if emit != nil {
			emit(nil, false)
		}
		return
	}

	rm.mu.Lock()
	_, removed := rm.members[participantID]
	delete(rm.members, participantID)
	if len(rm.members) == 0 {
		rm.dead = true
		delete(t.rooms, roomID)
	}
	t.mu.Unlock()

	remaining := membersExcept(rm.members, participantID)
	if emit != nil {
		emit(remaining, removed)
	}
	rm.mu.Unlock()
}

// Members returns a copy of the room's member set, empty if the room
// is absent.
func (t *RoomTable) Members(roomID string) []string {
	t.mu.RLock()
	rm, ok := t.rooms[roomID]
	t.mu.RUnlock()
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return membersExcept(rm.members, "")
}

func (t *RoomTable) Exists(roomID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[roomID]
	return ok
}

func (t *RoomTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rooms)
}

func membersExcept(members map[string]struct{}, skip string) []string {
	out := make([]string, 0, len(members))
	for id := range members {
		if id == skip {
			continue
		}
		out = append(out, id)
	}
	return out
}
