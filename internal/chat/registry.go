package chat

import "sync"

// Registry is the process-wide room membership map. It owns both the
// room -> members mapping and the reverse connection -> rooms index, so
// a disconnect can drop a connection from every room it joined without
// help from the transport.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room -> member conn ids
	conns map[string]map[string]struct{} // conn id -> joined rooms
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		rooms: map[string]map[string]struct{}{},
		conns: map[string]map[string]struct{}{},
	}
}

// Join adds connID to room's member set. Idempotent.
func (r *Registry) Join(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room] == nil {
		r.rooms[room] = map[string]struct{}{}
	}
	r.rooms[room][connID] = struct{}{}
	if r.conns[connID] == nil {
		r.conns[connID] = map[string]struct{}{}
	}
	r.conns[connID][room] = struct{}{}
}

// Leave removes connID from room's member set. No-op if either side is
// unknown. Empty rooms are pruned.
func (r *Registry) Leave(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, connID)
}

func (r *Registry) leaveLocked(room, connID string) {
	if members := r.rooms[room]; members != nil {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if joined := r.conns[connID]; joined != nil {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.conns, connID)
		}
	}
}

// RemoveEverywhere drops connID from every room it joined. Called on
// disconnect.
func (r *Registry) RemoveEverywhere(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.conns[connID] {
		r.leaveLocked(room, connID)
	}
	delete(r.conns, connID)
}

// Members returns a snapshot of room's member ids, excluding except if
// non-empty. Unknown rooms yield an empty slice.
func (r *Registry) Members(room, except string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		if id == except {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ActiveRooms returns a snapshot of every populated room and its members
func (r *Registry) ActiveRooms() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.rooms))
	for room, members := range r.rooms {
		ids := make([]string, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		out[room] = ids
	}
	return out
}
