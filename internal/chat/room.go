package chat

import "time"

// Message is one chat line as delivered to clients.
type Message struct {
	Username string    `json:"username"`
	Msg      string    `json:"msg"`
	Time     time.Time `json:"time"`
}

// Room holds the members and message log of one room code. Its fields are
// guarded by the owning Registry's lock.
type Room struct {
	code     string
	members  map[ConnID]struct{}
	names    map[ConnID]string
	messages []Message
}

func newRoom(code string) *Room {
	return &Room{
		code:    code,
		members: make(map[ConnID]struct{}),
		names:   make(map[ConnID]string),
	}
}

// Code returns the room code.
func (r *Room) Code() string {
	return r.code
}

func (r *Room) add(id ConnID, name string) {
	r.members[id] = struct{}{}
	r.names[id] = name
}

func (r *Room) remove(id ConnID) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	delete(r.names, id)
	return true
}

func (r *Room) empty() bool {
	return len(r.members) == 0
}

// appendMessage adds msg to the log, trimming the oldest entries when limit
// is positive.
func (r *Room) appendMessage(msg Message, limit int) {
	r.messages = append(r.messages, msg)
	if limit > 0 && len(r.messages) > limit {
		r.messages = append(r.messages[:0:0], r.messages[len(r.messages)-limit:]...)
	}
}
