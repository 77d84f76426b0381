package chat

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomrelay/internal/metrics"
)

// Registry maps room codes to rooms. Every read and mutation of a Room goes
// through the registry's lock, so member and name sets never diverge.
type Registry struct {
	mu           sync.RWMutex
	rooms        map[string]*Room
	historyLimit int
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

// NewRegistry creates an empty registry. historyLimit bounds each room's
// message log; zero keeps every message for the room's lifetime.
func NewRegistry(logger zerolog.Logger, m *metrics.Metrics, historyLimit int) *Registry {
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &Registry{
		rooms:        make(map[string]*Room),
		historyLimit: historyLimit,
		log:          logger.With().Str("component", "registry").Logger(),
		metrics:      m,
	}
}

// GetOrCreate returns the room for code, creating an empty one if needed.
func (r *Registry) GetOrCreate(code string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(code)
}

func (r *Registry) getOrCreateLocked(code string) *Room {
	if room, ok := r.rooms[code]; ok {
		return room
	}
	room := newRoom(code)
	r.rooms[code] = room
	r.metrics.RoomCreated()
	r.log.Info().Str("room", code).Msg("chat created")
	return room
}

// AddMember records id as a member of code under name. Adding an existing
// member only replaces its name. A missing room is created.
func (r *Registry) AddMember(code string, id ConnID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateLocked(code).add(id, name)
}

// RemoveMember drops id from code and reports whether that left the room
// empty. Unknown rooms and members are ignored.
func (r *Registry) RemoveMember(code string, id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	return room.remove(id) && room.empty()
}

// Leave drops id from code and, when that empties the room, deletes it in
// the same critical section so a concurrent sweep cannot claim it. It
// reports whether id was a member and whether the room was deleted.
func (r *Registry) Leave(code string, id ConnID) (removed, deleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok || !room.remove(id) {
		return false, false
	}
	if !room.empty() {
		return true, false
	}
	delete(r.rooms, code)
	r.metrics.RoomDeleted(metrics.ReasonEmpty)
	return true, true
}

// DeleteIfEmpty removes code when it has no members and reports whether it
// did so.
func (r *Registry) DeleteIfEmpty(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok || !room.empty() {
		return false
	}
	delete(r.rooms, code)
	r.metrics.RoomDeleted(metrics.ReasonEmpty)
	return true
}

// DeleteEmpty removes every room without members and returns their codes.
func (r *Registry) DeleteEmpty() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted []string
	for code, room := range r.rooms {
		if room.empty() {
			delete(r.rooms, code)
			r.metrics.RoomDeleted(metrics.ReasonReaped)
			deleted = append(deleted, code)
		}
	}
	sort.Strings(deleted)
	return deleted
}

// SnapshotNames returns the display names in code, sorted.
func (r *Registry) SnapshotNames(code string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(room.names))
	for _, name := range room.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns the connection ids in code, sorted.
func (r *Registry) Members(code string) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil
	}
	ids := make([]ConnID, 0, len(room.members))
	for id := range room.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AppendMessage adds msg to code's log. It reports false when the room no
// longer exists.
func (r *Registry) AppendMessage(code string, msg Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	room.appendMessage(msg, r.historyLimit)
	return true
}

// Messages returns a copy of code's message log.
func (r *Registry) Messages(code string) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil
	}
	return append([]Message(nil), room.messages...)
}

// Has reports whether code is present.
func (r *Registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

// Len returns the number of rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
